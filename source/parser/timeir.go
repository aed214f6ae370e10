package parser

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nvkalinin/jalali-calendar/jalali"
	"github.com/nvkalinin/jalali-calendar/log"
	"github.com/nvkalinin/jalali-calendar/store"
)

// TimeIR парсит список праздников года со страницы событий time.ir.
//
// Каждое событие — элемент li внутри списка событий месяца. Праздники отмечены классом eventHoliday.
// Первый span содержит дату («۱ فروردین»), второй (необязательный) — дату по григорианскому календарю
// в квадратных скобках, остальной текст — название события.
type TimeIR struct {
	Client    *http.Client // Должен быть настроен Cookie Jar.
	UserAgent string
	baseURL   string // Только для тестирования.
}

func (p *TimeIR) GetYear(y int) (store.Months, error) {
	dom, err := p.getEventsPage(y)
	if err != nil {
		return nil, err
	}

	months := make(store.Months, 12)
	dom.Find("li.eventHoliday").Each(func(i int, n *goquery.Selection) {
		mon, num, desc, err := p.parseEvent(n)
		if err != nil {
			log.Printf("[WARN] parser/timeir year %d: skipping event %d: %v", y, i, err)
			return
		}
		if !dayInMonth(y, mon, num) {
			log.Printf("[WARN] parser/timeir year %d: skipping event %d: day %d/%d out of bounds", y, i, mon, num)
			return
		}

		days, ok := months[mon]
		if !ok {
			days = make(store.Days, 4)
			months[mon] = days
		}

		// В один день может выпасть несколько праздников.
		day := days[num]
		day.Type = store.Holiday
		day.Working = false
		if day.Desc != "" {
			day.Desc += "؛ " + desc
		} else {
			day.Desc = desc
		}
		days[num] = day
	})
	log.Printf("[DEBUG] parser/timeir year %d: found holidays in %d months", y, len(months))

	return months, nil
}

func (p *TimeIR) getBaseURL() string {
	if p.baseURL != "" {
		return p.baseURL
	}
	return "https://www.time.ir"
}

// getEventsPage делает запрос к странице событий за год <y> и возвращает DOM-дерево этой страницы.
func (p *TimeIR) getEventsPage(y int) (*goquery.Document, error) {
	url := fmt.Sprintf("%s/fa/eventyear/%d", p.getBaseURL(), y)
	req, _ := http.NewRequest(http.MethodGet, url, http.NoBody)

	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}
	log.Printf("[DEBUG] parser/timeir year %d request: URL=%s", y, url)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("parser/timeir cannot GET events page: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("[WARN] parser/timeir cannot close response: %+v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("parser/timeir unexpected status %d", resp.StatusCode)
	}

	dom, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parser/timeir cannot parse html: %w", err)
	}
	return dom, nil
}

func (p *TimeIR) parseEvent(n *goquery.Selection) (mon jalali.Month, num int, desc string, err error) {
	spans := n.ChildrenFiltered("span")
	if spans.Length() == 0 {
		return 0, 0, "", fmt.Errorf("date node missing in '%s'", cleanText(n.Text()))
	}

	date := strings.Fields(cleanText(spans.First().Text()))
	if len(date) != 2 {
		return 0, 0, "", fmt.Errorf("cannot parse date '%s'", spans.First().Text())
	}

	num, err = parseNum(date[0])
	if err != nil {
		return 0, 0, "", fmt.Errorf("cannot parse day num '%s': %w", date[0], err)
	}

	m, ok := mapMonthName(date[1])
	if !ok {
		return 0, 0, "", fmt.Errorf("unknown month '%s'", date[1])
	}

	// Название события — текст li без дат.
	clone := n.Clone()
	clone.ChildrenFiltered("span").Remove()
	desc = cleanText(clone.Text())
	if desc == "" {
		log.Printf("[WARN] parser/timeir %s: empty event name", spans.First().Text())
	}

	return m, num, desc, nil
}
