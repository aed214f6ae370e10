package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nvkalinin/jalali-calendar/jalali"
	"github.com/nvkalinin/jalali-calendar/log"
)

type Sync struct {
	ServerUrl   string        `long:"server-url" short:"s" env:"SERVER_URL" value-name:"str" default:"http://localhost" description:"URL сервера с REST API календаря."`
	AdminPasswd string        `long:"passwd" short:"p" env:"WEB_ADMIN_PASSWD" value-name:"str" description:"Пароль пользователя admin."`
	Timeout     time.Duration `long:"timeout" short:"t" env:"TIMEOUT" value-name:"duration" default:"60s" description:"Макс. время выполнения запроса."`
	Years       []int         `long:"year" short:"y" env:"YEAR" value-name:"int" required:"true" description:"Год (по персидскому календарю), за который нужно синхронизировать календарь. Можно указывать несколько раз."`
}

func (s *Sync) Execute(args []string) error {
	ystr := make([]string, len(s.Years))
	for i, y := range s.Years {
		if y < jalali.MinYear || y > jalali.MaxYear {
			log.Fatalf("[ERROR] year %d is out of supported range %d..%d", y, jalali.MinYear, jalali.MaxYear)
		}
		ystr[i] = strconv.Itoa(y)
	}

	params := url.Values{"y": ystr}
	cl := &adminClient{ServerUrl: s.ServerUrl, Passwd: s.AdminPasswd, Timeout: s.Timeout}

	resp, err := cl.do("POST", "/api/admin/sync", strings.NewReader(params.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		log.Fatalf("[ERROR] sync error: %v", err)
	}
	defer closeBody(resp)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("[ERROR] cannot read response: %v", err)
	}
	log.Printf("[DEBUG] sync resp body: %s", respBody)

	res := map[int]string{}
	if err := json.Unmarshal(respBody, &res); err != nil {
		log.Fatalf("[ERROR] cannot parse response: %v", err)
	}

	for _, line := range syncReport(res) {
		log.Printf("%s", line)
	}
	return nil
}

// syncReport — строки лога по годам в порядке возрастания.
func syncReport(res map[int]string) []string {
	years := make([]int, 0, len(res))
	for y := range res {
		years = append(years, y)
	}
	sort.Ints(years)

	lines := make([]string, 0, len(years))
	for _, y := range years {
		if res[y] == "ok" {
			lines = append(lines, fmt.Sprintf("[INFO] year %d: ok", y))
		} else {
			lines = append(lines, fmt.Sprintf("[ERROR] year %d: %s", y, res[y]))
		}
	}
	return lines
}
