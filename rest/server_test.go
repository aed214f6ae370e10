package rest

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nvkalinin/jalali-calendar/jalali"
	"github.com/nvkalinin/jalali-calendar/store"
	"github.com/nvkalinin/jalali-calendar/store/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOpts = Opts{
	LogRequests: false,
	AdminPasswd: "pass",
	RateLimiter: true,
	ReqLimit:    100,
	LimitWindow: 1 * time.Second,
}

var testStore = engine.NewMemory()

func init() {
	testStore.PutYear(1403, store.Months{
		jalali.Farvardin: {
			1:  store.Day{WeekDay: store.Wednesday, Working: false, Type: store.Holiday, Desc: "نوروز", Gregorian: "2024-03-20"},
			2:  store.Day{WeekDay: store.Thursday, Working: false, Type: store.Holiday, Gregorian: "2024-03-21"},
			15: store.Day{WeekDay: store.Monday, Working: true, Type: store.Normal, Gregorian: "2024-04-03"},
		},
	})
}

type updaterMock struct {
	mu    sync.Mutex
	years []int
}

func (u *updaterMock) UpdateCalendar(y int) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if y == 1500 {
		return errors.New("no data for year 1500")
	}
	u.years = append(u.years, y)
	return nil
}

type backuperMock string

func (b backuperMock) Backup(w io.Writer) error {
	_, err := io.WriteString(w, string(b))
	return err
}

func newTestServer(t *testing.T, rest *Server) *httptest.Server {
	if rest.Store == nil {
		rest.Store = testStore
	}
	if rest.Opts.Listen == "" && rest.Opts.ReqLimit == 0 {
		rest.Opts = testOpts
	}
	srv := httptest.NewServer(rest.routes())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, string) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Ping(t *testing.T) {
	srv := newTestServer(t, &Server{})

	status, body := get(t, srv.URL+"/ping")
	assert.Equal(t, 200, status)
	assert.Equal(t, ".", body)
}

func TestServer_Year(t *testing.T) {
	srv := newTestServer(t, &Server{})

	// Нормальный случай.
	status, body := get(t, srv.URL+"/api/cal/1403")
	assert.Equal(t, 200, status)

	expJson := `{
		"1": {
			"1":  {"weekDay": "wed", "working": false, "type": "holiday", "desc": "نوروز", "gregorian": "2024-03-20"},
			"2":  {"weekDay": "thu", "working": false, "type": "holiday", "gregorian": "2024-03-21"},
			"15": {"weekDay": "mon", "working": true,  "type": "normal", "gregorian": "2024-04-03"}
		}
	}`
	assert.JSONEq(t, expJson, body)

	// Год не найден.
	status, _ = get(t, srv.URL+"/api/cal/1404")
	assert.Equal(t, 404, status)

	// Год вне диапазона.
	status, body = get(t, srv.URL+"/api/cal/9999")
	assert.Equal(t, 400, status)
	assert.JSONEq(t, `{"msg": "invalid year"}`, body)
}

func TestServer_Month(t *testing.T) {
	srv := newTestServer(t, &Server{})

	status, body := get(t, srv.URL+"/api/cal/1403/1")
	assert.Equal(t, 200, status)
	expJson := `{
		"1":  {"weekDay": "wed", "working": false, "type": "holiday", "desc": "نوروز", "gregorian": "2024-03-20"},
		"2":  {"weekDay": "thu", "working": false, "type": "holiday", "gregorian": "2024-03-21"},
		"15": {"weekDay": "mon", "working": true,  "type": "normal", "gregorian": "2024-04-03"}
	}`
	assert.JSONEq(t, expJson, body)

	// Месяц не найден.
	status, _ = get(t, srv.URL+"/api/cal/1403/2")
	assert.Equal(t, 404, status)

	status, _ = get(t, srv.URL+"/api/cal/1403/13")
	assert.Equal(t, 400, status)
}

func TestServer_Day(t *testing.T) {
	srv := newTestServer(t, &Server{})

	status, body := get(t, srv.URL+"/api/cal/1403/01/15")
	assert.Equal(t, 200, status)
	expJson := `{
		"weekDay":   "mon",
		"working":   true,
		"type":      "normal",
		"gregorian": "2024-04-03"
	}`
	assert.JSONEq(t, expJson, body)

	// День не найден.
	status, _ = get(t, srv.URL+"/api/cal/1403/1/31")
	assert.Equal(t, 404, status)

	status, _ = get(t, srv.URL+"/api/cal/1403/1/32")
	assert.Equal(t, 400, status)
}

func TestServer_ToJalali(t *testing.T) {
	srv := newTestServer(t, &Server{})

	status, body := get(t, srv.URL+"/api/jalali/2024-03-20")
	assert.Equal(t, 200, status)
	expJson := `{
		"jalali":      "1403/01/01",
		"gregorian":   "2024-03-20",
		"year":        1403,
		"month":       1,
		"day":         1,
		"monthName":   "فروردین",
		"weekDay":     4,
		"weekDayName": "چهارشنبه",
		"leap":        true
	}`
	assert.JSONEq(t, expJson, body)

	status, body = get(t, srv.URL+"/api/jalali/2023-02-29")
	assert.Equal(t, 400, status)
	assert.Contains(t, body, "invalid date")

	status, _ = get(t, srv.URL+"/api/jalali/today")
	assert.Equal(t, 400, status)

	status, _ = get(t, srv.URL+"/api/jalali/0100-01-01")
	assert.Equal(t, 400, status)
}

func TestServer_ToGregorian(t *testing.T) {
	srv := newTestServer(t, &Server{})

	status, body := get(t, srv.URL+"/api/gregorian/1358/1/1")
	assert.Equal(t, 200, status)
	expJson := `{
		"jalali":      "1358/01/01",
		"gregorian":   "1979-03-21",
		"year":        1358,
		"month":       1,
		"day":         1,
		"monthName":   "فروردین",
		"weekDay":     4,
		"weekDayName": "چهارشنبه",
		"leap":        true
	}`
	assert.JSONEq(t, expJson, body)

	// 1404 — невисокосный, 30 эсфанда нет.
	status, body = get(t, srv.URL+"/api/gregorian/1404/12/30")
	assert.Equal(t, 400, status)
	assert.Contains(t, body, `"msg"`)

	status, _ = get(t, srv.URL+"/api/gregorian/1404/xx/1")
	assert.Equal(t, 400, status)
}

func TestServer_Leap(t *testing.T) {
	srv := newTestServer(t, &Server{})

	status, body := get(t, srv.URL+"/api/leap/1403")
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `{"year": 1403, "leap": true, "days": 366}`, body)

	status, body = get(t, srv.URL+"/api/leap/1404")
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `{"year": 1404, "leap": false, "days": 365}`, body)

	status, _ = get(t, srv.URL+"/api/leap/5000")
	assert.Equal(t, 400, status)
	status, _ = get(t, srv.URL+"/api/leap/abc")
	assert.Equal(t, 400, status)
}

func TestServer_MonthInfo(t *testing.T) {
	srv := newTestServer(t, &Server{})

	status, body := get(t, srv.URL+"/api/month/1404/1")
	assert.Equal(t, 200, status)
	expJson := `{
		"year":   1404,
		"month":  1,
		"name":   "فروردین",
		"days":   31,
		"offset": 6,
		"leap":   false,
		"first":  "2025-03-21",
		"last":   "2025-04-20"
	}`
	assert.JSONEq(t, expJson, body)

	status, body = get(t, srv.URL+"/api/month/1403/12")
	assert.Equal(t, 200, status)
	expJson = `{
		"year":   1403,
		"month":  12,
		"name":   "اسفند",
		"days":   30,
		"offset": 4,
		"leap":   true,
		"first":  "2025-02-19",
		"last":   "2025-03-20"
	}`
	assert.JSONEq(t, expJson, body)

	status, _ = get(t, srv.URL+"/api/month/1404/0")
	assert.Equal(t, 400, status)
}

func TestServer_Today(t *testing.T) {
	tehran := time.FixedZone("IRST", 3*3600+1800)
	opts := testOpts
	opts.Location = tehran
	srv := newTestServer(t, &Server{Opts: opts})

	status, body := get(t, srv.URL+"/api/today")
	assert.Equal(t, 200, status)

	today, err := jalali.Today(tehran)
	require.NoError(t, err)
	assert.Contains(t, body, fmt.Sprintf(`"jalali":"%s"`, jalali.Format(today)))
}

func TestServer_Today_outOfRange(t *testing.T) {
	srv := newTestServer(t, &Server{
		Opts: testOpts,
		now: func() time.Time {
			return time.Date(3900, time.January, 1, 12, 0, 0, 0, time.UTC)
		},
	})

	status, body := get(t, srv.URL+"/api/today")
	assert.Equal(t, 500, status)
	assert.Contains(t, body, "cannot determine today")
	assert.Contains(t, body, "out of")

	srv = newTestServer(t, &Server{
		Opts: testOpts,
		now: func() time.Time {
			return time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)
		},
	})
	status, body = get(t, srv.URL+"/api/today")
	assert.Equal(t, 200, status)
	assert.Contains(t, body, `"jalali":"1403/01/01"`)
	assert.Contains(t, body, `"gregorian":"2024-03-20"`)
}

func TestServer_AdminSync(t *testing.T) {
	upd := &updaterMock{}
	srv := newTestServer(t, &Server{Updater: upd})

	form := url.Values{"y": {"1403", "1404", "1500"}}

	// Без пароля.
	resp, err := http.PostForm(srv.URL+"/api/admin/sync", form)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 401, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/admin/sync", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("admin", "pass")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"1403": "ok", "1404": "ok", "1500": "no data for year 1500"}`, string(body))
	assert.Equal(t, []int{1403, 1404}, upd.years)

	// Некорректный год.
	req, err = http.NewRequest(http.MethodPost, srv.URL+"/api/admin/sync", strings.NewReader("y=foo"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("admin", "pass")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, 400, resp2.StatusCode)
}

func TestServer_AdminDisabled(t *testing.T) {
	opts := testOpts
	opts.AdminPasswd = ""
	srv := newTestServer(t, &Server{Opts: opts, Updater: &updaterMock{}})

	resp, err := http.PostForm(srv.URL+"/api/admin/sync", url.Values{"y": {"1403"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestServer_AdminBackup(t *testing.T) {
	srv := newTestServer(t, &Server{Backuper: backuperMock("bolt snapshot")})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/backup", http.NoBody)
	require.NoError(t, err)
	req.SetBasicAuth("admin", "pass")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/gzip", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".bolt.gz")

	gz, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, "bolt snapshot", string(data))
}

func TestServer_AdminBackup_notSupported(t *testing.T) {
	srv := newTestServer(t, &Server{})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/backup", http.NoBody)
	require.NoError(t, err)
	req.SetBasicAuth("admin", "pass")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 501, resp.StatusCode)
}
