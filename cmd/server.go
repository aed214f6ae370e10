package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata" // Для --location на системах без zoneinfo.

	"github.com/nvkalinin/jalali-calendar/calendar"
	"github.com/nvkalinin/jalali-calendar/jalali"
	"github.com/nvkalinin/jalali-calendar/log"
	"github.com/nvkalinin/jalali-calendar/rest"
	"github.com/nvkalinin/jalali-calendar/source"
	"github.com/nvkalinin/jalali-calendar/source/parser"
	"github.com/nvkalinin/jalali-calendar/store"
	"github.com/nvkalinin/jalali-calendar/store/engine"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"
)

type EngineType string

var (
	EngineMemory EngineType = "memory"
	EngineBolt   EngineType = "bolt"
)

type ParserType string

var (
	ParserNone   ParserType = "none"
	ParserTimeIR ParserType = "timeir"
	ParserPnldev ParserType = "pnldev"
)

type Server struct {
	SyncAt      string   `long:"sync-at" env:"SYNC_AT" value-name:"hh:mm[:ss]" description:"В какое время синхронизировать календарь со всеми источниками. Обновление происходит один раз в сутки. Если не указано, то автоматическое обновление отключено."`
	SyncOnStart []string `long:"sync-on-start" env:"SYNC_ON_START" value-name:"year" default:"current" default:"next" description:"За какие годы (по персидскому календарю) синхронизировать календарь при запуске программы. Можно указывать числа, 'current' — текущий год, 'next' — следующий год. 'none' — отключить синхронизацию при запуске."`
	Location    string   `long:"location" env:"LOCATION" value-name:"tz" default:"Asia/Tehran" description:"Часовой пояс, в котором определяется текущая дата и время sync-at. Пусто — локальный пояс сервера."`

	Web struct {
		Listen      string `long:"listen" env:"LISTEN" value-name:"addr" default:"0.0.0.0:80" description:"Сетевой адрес для веб-сервера."`
		AccessLog   bool   `long:"access-log" env:"ACCESS_LOG" description:"Логировать все HTTP-запросы."`
		Metrics     bool   `long:"metrics" env:"METRICS" description:"Отдавать метрики Prometheus на /metrics."`
		AdminPasswd string `long:"admin-passwd" env:"ADMIN_PASSWD" description:"Пароль пользователя admin для вызова /api/admin/*. Если не задан, /api/admin/* отключено."`

		ReadTimeout       time.Duration `long:"read-timeout" env:"READ_TIMEOUT" value-name:"duration" default:"5s" description:"http.Server ReadTimeout"`
		ReadHeaderTimeout time.Duration `long:"read-header-timeout" env:"READ_HEADER_TIMEOUT" value-name:"duration" default:"5s" description:"http.Server ReadHeaderTimeout"`
		IdleTimeout       time.Duration `long:"idle-timeout" env:"IDLE_TIMEOUT" value-name:"duration" default:"30s" description:"http.Server IdleTimeout"`

		// Запросы к /admin могут выполняться долго, поэтому WriteTimout должен быть достаточно большим.
		WriteTimeout time.Duration `long:"write-timeout" env:"WRITE_TIMEOUT" value-name:"duration" default:"60s" description:"http.Server WriteTimeout"`

		RateLimiter struct {
			ReqLimit    int           `long:"reqs" env:"REQS" value-name:"num" default:"100" description:"Количество запросов с одного IP. Если 0 — rate limiter отключен."`
			LimitWindow time.Duration `long:"window" env:"WINDOW" value-name:"duration" default:"1s" description:"Интервал времени, за который разврешено указанное кол-во запросов."`
		} `group:"Rate Limiter" namespace:"ratelim" env-namespace:"RATE_LIM"`
	} `group:"Web" namespace:"web" env-namespace:"WEB"`

	Store struct {
		Engine EngineType `long:"engine" env:"ENGINE" value-name:"type" choice:"memory" choice:"bolt" default:"bolt" description:"Тип хранилища для данных, собранных парсерами."`

		Bolt struct {
			File string `long:"file" env:"FILE" value-name:"path" default:"cal.bolt" description:"Путь к файлу БД."`
		} `group:"Настройки хранилища bolt" namespace:"bolt" env-namespace:"BOLT"`
	} `group:"Хранилище" namespace:"store" env-namespace:"STORE"`

	Source struct {
		Parser  ParserType `long:"parser" env:"PARSER" value-name:"type" choice:"timeir" choice:"pnldev" choice:"none" default:"timeir" description:"Внешний источник официальных праздников, который нужно парсить."`
		Weekend []string   `long:"weekend" env:"WEEKEND" env-delim:"," value-name:"day" choice:"sat" choice:"sun" choice:"mon" choice:"tue" choice:"wed" choice:"thu" choice:"fri" default:"fri" description:"Еженедельные выходные. Можно указывать несколько раз."`

		TimeIR struct {
			Timeout   time.Duration `long:"timeout" env:"TIMEOUT" value-name:"duration" default:"30s" description:"Максимальное время выполнения запроса к сайту."`
			UserAgent string        `long:"user-agent" env:"USER_AGENT" description:"Значение заголовка User-Agent во всех запросах к сайту."`
		} `group:"Парсер time.ir" namespace:"timeir" env-namespace:"TIMEIR"`

		Pnldev struct {
			Timeout time.Duration `long:"timeout" env:"TIMEOUT" value-name:"duration" default:"30s" description:"Максимальное время выполнения запроса к API."`
		} `group:"Парсер pnldev.com" namespace:"pnldev" env-namespace:"PNLDEV"`

		Override string `long:"override" env:"OVERRIDE" value-name:"file.yml" description:"Путь к файлу с локальными изменениями календаря. Если задан, используется всегда, вне зависимости от выбранного парсера."`
	} `group:"Источник данных" namespace:"source" env-namespace:"SOURCE"`
}

func (s *Server) Execute(args []string) error {
	a, err := s.makeApp()
	if err != nil {
		return err
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		a.shutdown()
	}()

	a.run()
	a.wait()
	return nil
}

type app struct {
	srv             *rest.Server
	proc            *calendar.Processor
	store           Store
	autoSync        bool
	syncYears       []int
	syncYearsFinish chan struct{}
	stopOnce        sync.Once
	stopped         chan struct{}
}

func (s *Server) makeApp() (*app, error) {
	a := &app{
		syncYearsFinish: make(chan struct{}),
		stopped:         make(chan struct{}),
	}

	loc, err := s.location()
	if err != nil {
		return nil, fmt.Errorf("location: %w", err)
	}

	st, err := s.makeStore()
	if err != nil {
		return nil, err
	}
	a.store = st

	src, err := s.makeSources()
	if err != nil {
		return nil, err
	}

	var syncAt time.Time
	if s.SyncAt != "" {
		syncAt, err = parseSyncAt(s.SyncAt)
		if err != nil {
			return nil, fmt.Errorf("sync at: %w", err)
		}
		a.autoSync = true
	}

	today, err := jalali.Today(loc)
	if err != nil {
		return nil, fmt.Errorf("today: %w", err)
	}
	syncYears, err := parseYears(s.SyncOnStart, today.Year)
	if err != nil {
		return nil, fmt.Errorf("sync on start: %w", err)
	}
	a.syncYears = syncYears

	a.proc = calendar.NewProcessor(calendar.ProcOpts{
		Src:      src,
		Store:    calendar.Store(st),
		UpdateAt: syncAt,
		Location: loc,
	})

	a.srv = &rest.Server{
		Store:   st,
		Updater: a.proc,
		Opts: rest.Opts{
			Listen:      s.Web.Listen,
			LogRequests: s.Web.AccessLog,
			Metrics:     s.Web.Metrics,
			AdminPasswd: s.Web.AdminPasswd,
			Location:    loc,

			ReadTimeout:       s.Web.ReadTimeout,
			ReadHeaderTimeout: s.Web.ReadHeaderTimeout,
			WriteTimeout:      s.Web.WriteTimeout,
			IdleTimeout:       s.Web.IdleTimeout,

			RateLimiter: s.Web.RateLimiter.ReqLimit > 0,
			ReqLimit:    s.Web.RateLimiter.ReqLimit,
			LimitWindow: s.Web.RateLimiter.LimitWindow,
		},
	}
	if b, ok := st.(rest.Backuper); ok {
		a.srv.Backuper = b
	}

	return a, nil
}

func (s *Server) location() (*time.Location, error) {
	if s.Location == "" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Location)
}

type Store interface {
	FindDay(y int, mon jalali.Month, d int) (*store.Day, bool)
	FindMonth(y int, mon jalali.Month) (store.Days, bool)
	FindYear(y int) (store.Months, bool)
	PutYear(y int, data store.Months) error
}

func (s *Server) makeStore() (Store, error) {
	switch s.Store.Engine {
	case EngineMemory:
		return engine.NewMemory(), nil
	case EngineBolt:
		return engine.NewBolt(s.Store.Bolt.File)
	default:
		return nil, fmt.Errorf("unknown store engine %s", s.Store.Engine)
	}
}

func (s *Server) makeSources() ([]calendar.Source, error) {
	weekend, err := parseWeekend(s.Source.Weekend)
	if err != nil {
		return nil, fmt.Errorf("weekend: %w", err)
	}

	src := make([]calendar.Source, 0, 3)
	src = append(src, &source.Generic{Weekend: weekend})

	switch s.Source.Parser {
	case ParserNone:
	case ParserTimeIR:
		ua := s.Source.TimeIR.UserAgent
		if ua == "" {
			ua = "Go-http-client"
		}

		jar, err := cookiejar.New(&cookiejar.Options{
			PublicSuffixList: publicsuffix.List,
		})
		if err != nil {
			return nil, fmt.Errorf("cannot create cookie jar: %w", err)
		}

		p := &parser.TimeIR{
			Client: &http.Client{
				Timeout: s.Source.TimeIR.Timeout,
				Jar:     jar,
			},
			UserAgent: ua,
		}

		src = append(src, p)
	case ParserPnldev:
		p := &parser.Pnldev{
			Client: &http.Client{
				Timeout: s.Source.Pnldev.Timeout,
			},
		}

		src = append(src, p)
	default:
		return nil, fmt.Errorf("unknown parser %s", s.Source.Parser)
	}

	if s.Source.Override != "" {
		src = append(src, &source.Override{
			Path: s.Source.Override,
		})
	}

	return src, nil
}

// parseWeekend переводит коды дней недели (sat…fri) в jalali.Weekday.
// Пустой список — выходной только в пятницу.
func parseWeekend(codes []string) ([]jalali.Weekday, error) {
	if len(codes) == 0 {
		return []jalali.Weekday{jalali.Jomeh}, nil
	}

	res := make([]jalali.Weekday, 0, len(codes))
	for _, code := range codes {
		found := false
		for wd := jalali.Shanbeh; wd <= jalali.Jomeh; wd++ {
			if c, _ := store.NewWeekDay(wd); string(c) == code {
				res = append(res, wd)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown week day '%s'", code)
		}
	}
	return res, nil
}

func parseSyncAt(val string) (time.Time, error) {
	if t, err := time.Parse("15:04", val); err == nil {
		return t, nil
	}

	t, err := time.Parse("15:04:05", val)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time '%s', it must match pattern hh:mm[:ss]", val)
	}
	return t, nil
}

func parseYears(vals []string, current int) ([]int, error) {
	if len(vals) == 1 && vals[0] == "none" {
		return nil, nil
	}

	years := make(map[int]bool, len(vals))
	for _, val := range vals {
		switch val {
		case "current":
			years[current] = true
		case "next":
			years[current+1] = true
		default:
			y, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("invalid year '%s': %w", val, err)
			}
			if y < jalali.MinYear || y > jalali.MaxYear {
				return nil, fmt.Errorf("invalid year %d", y)
			}
			years[y] = true
		}
	}

	ylist := make([]int, 0, len(years))
	for y := range years {
		ylist = append(ylist, y)
	}
	sort.Ints(ylist)

	return ylist, nil
}

func (a *app) run() {
	g, _ := errgroup.WithContext(context.Background())

	if a.autoSync {
		g.Go(func() error {
			a.proc.RunUpdates()
			return nil
		})
	}

	g.Go(func() error {
		syncOnRun(a.proc, a.syncYears, a.syncYearsFinish)
		return nil
	})

	g.Go(func() error {
		if err := a.srv.Run(); err != nil && err != http.ErrServerClosed {
			log.Printf("[ERROR] startup: %v", err)
			a.shutdown() // Иначе RunUpdates не завершится.
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("[DEBUG] app stopped with error: %v", err)
	}
}

func (a *app) shutdown() {
	a.stopOnce.Do(func() {
		log.Printf("[INFO] shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		g, _ := errgroup.WithContext(ctx)

		if a.autoSync {
			g.Go(func() error {
				return a.proc.Shutdown(ctx)
			})
		}
		g.Go(func() error {
			return a.srv.Shutdown(ctx)
		})
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return fmt.Errorf("sync on run: %w", ctx.Err())
			case <-a.syncYearsFinish:
				return nil
			}
		})

		if err := g.Wait(); err != nil {
			log.Printf("[ERROR] app shutdown: %v", err)
		}

		if c, ok := a.store.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				log.Printf("[WARN] cannot close store: %v", err)
			}
		}
		close(a.stopped)
	})
}

func (a *app) wait() {
	<-a.stopped
}

func syncOnRun(proc *calendar.Processor, years []int, finished chan<- struct{}) {
	for _, y := range years {
		if err := proc.UpdateCalendar(y); err != nil {
			log.Printf("[WARN] sync on run, year %d: %+v", y, err)
		}
	}
	close(finished)
}
