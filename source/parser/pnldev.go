package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nvkalinin/jalali-calendar/jalali"
	"github.com/nvkalinin/jalali-calendar/log"
	"github.com/nvkalinin/jalali-calendar/store"
)

// Pnldev получает праздники года из JSON API pnldev.com.
type Pnldev struct {
	Client  *http.Client
	baseURL string // Только для тестирования.
}

type pnldevResponse struct {
	Status bool                                `json:"status"`
	Result map[string]map[string]pnldevDayInfo `json:"result"` // Месяц -> день -> описание.
}

type pnldevDayInfo struct {
	Solar struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Day   int `json:"day"`
	} `json:"solar"`
	Holiday bool     `json:"holiday"`
	Event   []string `json:"event"`
}

func (p *Pnldev) GetYear(y int) (store.Months, error) {
	body, err := p.fetch(y)
	if err != nil {
		return nil, err
	}

	resp := pnldevResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parser/pnldev cannot parse json: %w", err)
	}
	if !resp.Status {
		return nil, fmt.Errorf("parser/pnldev api returned status false")
	}

	months := make(store.Months, 12)
	for _, days := range resp.Result {
		for key, info := range days {
			if !info.Holiday {
				continue
			}

			date := jalali.Date{Year: info.Solar.Year, Month: jalali.Month(info.Solar.Month), Day: info.Solar.Day}
			if date.Year != y {
				log.Printf("[WARN] parser/pnldev year %d: skipping day %s: unexpected date %s", y, key, date)
				continue
			}
			if err := date.Validate(); err != nil {
				log.Printf("[WARN] parser/pnldev year %d: skipping day %s: %v", y, key, err)
				continue
			}

			if _, ok := months[date.Month]; !ok {
				months[date.Month] = make(store.Days, 4)
			}
			months[date.Month][date.Day] = store.Day{
				Working: false,
				Type:    store.Holiday,
				Desc:    cleanText(strings.Join(info.Event, "؛ ")),
			}
		}
	}

	return months, nil
}

func (p *Pnldev) getBaseURL() string {
	if p.baseURL != "" {
		return p.baseURL
	}
	return "https://pnldev.com"
}

func (p *Pnldev) fetch(y int) ([]byte, error) {
	url := fmt.Sprintf("%s/api/calender?year=%d&holiday=true", p.getBaseURL(), y)
	log.Printf("[DEBUG] parser/pnldev year %d request: URL=%s", y, url)

	resp, err := p.Client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("parser/pnldev cannot GET calendar: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("[WARN] parser/pnldev cannot close response: %+v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("parser/pnldev unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parser/pnldev cannot read response: %w", err)
	}
	return body, nil
}
