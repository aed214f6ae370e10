package rest

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/nvkalinin/jalali-calendar/jalali"
	"github.com/nvkalinin/jalali-calendar/log"
	"github.com/nvkalinin/jalali-calendar/store"
)

type Store interface {
	FindDay(y int, mon jalali.Month, d int) (*store.Day, bool)
	FindMonth(y int, mon jalali.Month) (store.Days, bool)
	FindYear(y int) (store.Months, bool)
}

type Updater interface {
	UpdateCalendar(y int) error
}

type Backuper interface {
	Backup(w io.Writer) error
}

type Server struct {
	Store    Store
	Updater  Updater
	Backuper Backuper // Если nil, /api/admin/backup отвечает 501.
	Opts     Opts

	mu      sync.Mutex
	srv     *http.Server
	stopped bool
	metrics *metrics
	now     func() time.Time // Только для тестирования.
}

type Opts struct {
	Listen      string
	LogRequests bool
	AdminPasswd string         // Если пусто, /api/admin/* не подключается.
	Location    *time.Location // Для /api/today. По умолчанию time.Local.
	Metrics     bool           // Отдавать метрики Prometheus на /metrics.

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	RateLimiter bool
	ReqLimit    int
	LimitWindow time.Duration
}

// Run блокируется, пока сервер не будет остановлен через Shutdown.
func (s *Server) Run() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	s.srv = &http.Server{
		Addr:              s.Opts.Listen,
		Handler:           s.routes(),
		ReadTimeout:       s.Opts.ReadTimeout,
		ReadHeaderTimeout: s.Opts.ReadHeaderTimeout,
		WriteTimeout:      s.Opts.WriteTimeout,
		IdleTimeout:       s.Opts.IdleTimeout,
	}
	srv := s.srv
	s.mu.Unlock()

	log.Printf("[INFO] rest server listening on %s", s.Opts.Listen)
	return srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.stopped = true
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("rest shutdown: %w", err)
	}
	return nil
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	s.metrics = newMetrics()

	r.Use(middleware.Heartbeat("/ping"))
	if s.Opts.Metrics {
		r.Use(s.metrics.middleware)
	}
	if s.Opts.LogRequests {
		r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  log.AccessLog{},
			NoColor: true,
		}))
	}
	r.Use(middleware.Recoverer)

	if s.Opts.Metrics {
		r.Method(http.MethodGet, "/metrics", s.metrics.handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if s.Opts.RateLimiter {
				r.Use(httprate.LimitByIP(s.Opts.ReqLimit, s.Opts.LimitWindow))
			}

			r.Get("/cal/{y}", s.yearCtrl)
			r.Get("/cal/{y}/{m}", s.monthCtrl)
			r.Get("/cal/{y}/{m}/{d}", s.dayCtrl)

			r.Get("/jalali/{date}", s.toJalaliCtrl)
			r.Get("/gregorian/{y}/{m}/{d}", s.toGregorianCtrl)
			r.Get("/leap/{y}", s.leapCtrl)
			r.Get("/month/{y}/{m}", s.monthInfoCtrl)
			r.Get("/today", s.todayCtrl)
		})

		if s.Opts.AdminPasswd != "" {
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.BasicAuth("admin", map[string]string{"admin": s.Opts.AdminPasswd}))

				r.Post("/sync", s.syncCtrl)
				r.Get("/backup", s.backupCtrl)
			})
		}
	})

	return r
}

func (s *Server) yearCtrl(w http.ResponseWriter, r *http.Request) {
	y, err := yearParam(r)
	if err != nil {
		sendErrorJson(w, 400, "invalid year")
		return
	}

	year, found := s.Store.FindYear(y)
	if !found {
		sendErrorJson(w, 404, "year not found")
		return
	}

	sendJsonResponse(w, year)
}

func (s *Server) monthCtrl(w http.ResponseWriter, r *http.Request) {
	y, err1 := yearParam(r)
	m, err2 := monthParam(r)
	err := combineErrors(err1, err2)
	if err != nil {
		sendErrorJson(w, 400, "invalid date")
		return
	}

	month, found := s.Store.FindMonth(y, m)
	if !found {
		sendErrorJson(w, 404, "month not found")
		return
	}

	sendJsonResponse(w, month)
}

func (s *Server) dayCtrl(w http.ResponseWriter, r *http.Request) {
	y, err1 := yearParam(r)
	m, err2 := monthParam(r)
	d, err3 := dayParam(r)
	err := combineErrors(err1, err2, err3)
	if err != nil {
		sendErrorJson(w, 400, "invalid date")
		return
	}

	day, found := s.Store.FindDay(y, m, d)
	if !found {
		sendErrorJson(w, 404, "date not found")
		return
	}

	sendJsonResponse(w, day)
}

// convResult — одна дата в обоих календарях.
type convResult struct {
	Jalali      string `json:"jalali"`
	Gregorian   string `json:"gregorian"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Day         int    `json:"day"`
	MonthName   string `json:"monthName"`
	WeekDay     int    `json:"weekDay"`
	WeekDayName string `json:"weekDayName"`
	Leap        bool   `json:"leap"`
}

func makeConvResult(j jalali.Date, g jalali.Gregorian) (*convResult, error) {
	wd, err := jalali.WeekdayOf(j)
	if err != nil {
		return nil, err
	}

	return &convResult{
		Jalali:      jalali.Format(j),
		Gregorian:   jalali.FormatGregorian(g),
		Year:        j.Year,
		Month:       int(j.Month),
		Day:         j.Day,
		MonthName:   j.Month.String(),
		WeekDay:     int(wd),
		WeekDayName: wd.String(),
		Leap:        jalali.IsLeap(j.Year),
	}, nil
}

func (s *Server) toJalaliCtrl(w http.ResponseWriter, r *http.Request) {
	g, err := jalali.ParseGregorian(chi.URLParam(r, "date"))
	if err != nil {
		s.metrics.conversion("to_jalali", err)
		sendErrorJson(w, 400, err.Error())
		return
	}

	j, err := jalali.ToJalali(g)
	s.metrics.conversion("to_jalali", err)
	if err != nil {
		sendErrorJson(w, 400, err.Error())
		return
	}

	sendConvResult(w, j, g)
}

func (s *Server) toGregorianCtrl(w http.ResponseWriter, r *http.Request) {
	y, err1 := intParam(r, "y")
	m, err2 := intParam(r, "m")
	d, err3 := intParam(r, "d")
	if err := combineErrors(err1, err2, err3); err != nil {
		sendErrorJson(w, 400, "invalid date")
		return
	}

	j := jalali.Date{Year: y, Month: jalali.Month(m), Day: d}
	g, err := jalali.ToGregorian(j)
	s.metrics.conversion("to_gregorian", err)
	if err != nil {
		sendErrorJson(w, 400, err.Error())
		return
	}

	sendConvResult(w, j, g)
}

func (s *Server) todayCtrl(w http.ResponseWriter, r *http.Request) {
	loc := s.Opts.Location
	if loc == nil {
		loc = time.Local
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}

	t := now().In(loc)
	j, err := jalali.FromTime(t)
	if err != nil {
		log.Printf("[ERROR] rest today %s: %v", t.Format(time.RFC3339), err)
		sendErrorJson(w, 500, fmt.Sprintf("cannot determine today: %v", err))
		return
	}
	g := jalali.Gregorian{Year: t.Year(), Month: t.Month(), Day: t.Day()}

	sendConvResult(w, j, g)
}

func sendConvResult(w http.ResponseWriter, j jalali.Date, g jalali.Gregorian) {
	res, err := makeConvResult(j, g)
	if err != nil {
		sendErrorJson(w, 400, err.Error())
		return
	}
	sendJsonResponse(w, res)
}

func (s *Server) leapCtrl(w http.ResponseWriter, r *http.Request) {
	y, err := yearParam(r)
	if err != nil {
		sendErrorJson(w, 400, "invalid year")
		return
	}

	sendJsonResponse(w, &struct {
		Year int  `json:"year"`
		Leap bool `json:"leap"`
		Days int  `json:"days"`
	}{y, jalali.IsLeap(y), jalali.DaysInYear(y)})
}

// monthInfo — всё, что нужно для отрисовки месяца в date picker.
type monthInfo struct {
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Name   string `json:"name"`
	Days   int    `json:"days"`
	Offset int    `json:"offset"` // Пустых ячеек перед 1-м числом (неделя с субботы).
	Leap   bool   `json:"leap"`
	First  string `json:"first"` // Григорианская дата 1-го числа.
	Last   string `json:"last"`  // Григорианская дата последнего дня.
}

func (s *Server) monthInfoCtrl(w http.ResponseWriter, r *http.Request) {
	y, err1 := yearParam(r)
	m, err2 := monthParam(r)
	if err := combineErrors(err1, err2); err != nil {
		sendErrorJson(w, 400, "invalid date")
		return
	}

	first := jalali.Date{Year: y, Month: m, Day: 1}
	offset, err := jalali.MonthStart(y, m)
	if err != nil {
		sendErrorJson(w, 400, err.Error())
		return
	}
	firstG, err := jalali.ToGregorian(first)
	if err != nil {
		sendErrorJson(w, 400, err.Error())
		return
	}
	lastG, err := jalali.ToGregorian(first.LastDay())
	if err != nil {
		sendErrorJson(w, 400, err.Error())
		return
	}

	sendJsonResponse(w, &monthInfo{
		Year:   y,
		Month:  int(m),
		Name:   m.String(),
		Days:   jalali.DaysInMonth(y, m),
		Offset: int(offset),
		Leap:   jalali.IsLeap(y),
		First:  jalali.FormatGregorian(firstG),
		Last:   jalali.FormatGregorian(lastG),
	})
}

// syncCtrl синхронизирует календарь за годы из параметров формы y.
// В ответе для каждого года "ok" или текст ошибки.
func (s *Server) syncCtrl(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		sendErrorJson(w, 400, "invalid form")
		return
	}

	ystr := r.Form["y"]
	if len(ystr) == 0 {
		sendErrorJson(w, 400, "no years to sync")
		return
	}

	years := make([]int, 0, len(ystr))
	for _, v := range ystr {
		y, err := strconv.Atoi(v)
		if err != nil || y < jalali.MinYear || y > jalali.MaxYear {
			sendErrorJson(w, 400, fmt.Sprintf("invalid year '%s'", v))
			return
		}
		years = append(years, y)
	}

	res := make(map[int]string, len(years))
	for _, y := range years {
		err := s.Updater.UpdateCalendar(y)
		s.metrics.sync(err)
		if err != nil {
			log.Printf("[WARN] rest sync year %d: %v", y, err)
			res[y] = err.Error()
			continue
		}
		res[y] = "ok"
	}

	sendJsonResponse(w, res)
}

func (s *Server) backupCtrl(w http.ResponseWriter, r *http.Request) {
	if s.Backuper == nil {
		sendErrorJson(w, 501, "backup is not supported by store engine")
		return
	}

	fname := fmt.Sprintf("cal_%s.bolt.gz", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fname))
	w.WriteHeader(200)

	// Заголовки уже отправлены, ошибки можно только залогировать.
	gz := gzip.NewWriter(w)
	if err := s.Backuper.Backup(gz); err != nil {
		log.Printf("[ERROR] rest backup: %v", err)
	}
	if err := gz.Close(); err != nil {
		log.Printf("[WARN] rest backup gzip close: %v", err)
	}
}

func intParam(r *http.Request, param string) (int, error) {
	strVal := chi.URLParam(r, param)
	return strconv.Atoi(strVal)
}

func yearParam(r *http.Request) (int, error) {
	y, err := intParam(r, "y")
	if err != nil {
		return 0, err
	}

	if y < jalali.MinYear || y > jalali.MaxYear {
		return 0, jalali.ErrOutOfRange
	}
	return y, nil
}

func monthParam(r *http.Request) (jalali.Month, error) {
	m, err := intParam(r, "m")
	if err != nil {
		return 0, err
	}

	mon := jalali.Month(m)
	if !mon.Valid() {
		return 0, errors.New("invalid month number")
	}
	return mon, nil
}

func dayParam(r *http.Request) (int, error) {
	d, err := intParam(r, "d")
	if err != nil {
		return 0, err
	}

	if d < 1 || d > 31 {
		return 0, errors.New("invalid day number")
	}
	return d, nil
}

func combineErrors(err ...error) error {
	nonNil := make([]error, 0, len(err))
	for _, e := range err {
		if e != nil {
			nonNil = append(nonNil, e)
		}
	}

	if len(nonNil) == 0 {
		return nil
	}
	return fmt.Errorf("%+v", nonNil)
}

func sendJsonResponse(w http.ResponseWriter, data interface{}) {
	respJson, err := json.Marshal(data)
	if err != nil {
		log.Printf("[WARN] cannot marshal response data: %+v", err)
		sendErrorJson(w, 500, "cannot marshal response data")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)

	if _, err = w.Write(respJson); err != nil {
		log.Printf("[WARN] cannot write response data: %+v", err)
	}
}

type restError struct {
	Msg string `json:"msg"`
}

func sendErrorJson(w http.ResponseWriter, status int, msg string) {
	errJson, err := json.Marshal(&restError{Msg: msg})
	if err != nil {
		log.Printf("[WARN] cannot marshal rest error: %+v", err)
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err = w.Write(errJson); err != nil {
		log.Printf("[WARN] cannot write rest error: %+v", err)
	}
}
