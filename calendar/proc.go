package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/nvkalinin/jalali-calendar/jalali"
	"github.com/nvkalinin/jalali-calendar/log"
	"github.com/nvkalinin/jalali-calendar/store"
)

type Source interface {
	// GetYear может вернуть не все месяцы года. Год — по персидскому календарю.
	GetYear(y int) (store.Months, error)
}

type Store interface {
	PutYear(y int, data store.Months) error
}

type ProcOpts struct {
	Src      []Source       // Упорядоченный список источников календарей.
	Store    Store          // Куда сохранять итоговый календарь (необязательно, если нужен только метод MakeCalendar).
	UpdateAt time.Time      // Используется только время, остальное игнорируется.
	Location *time.Location // Часовой пояс для UpdateAt и определения текущего года. По умолчанию time.Local.
}

type Processor struct {
	ProcOpts
	stopCh chan struct{}
	doneCh chan struct{}
}

func NewProcessor(opts ProcOpts) *Processor {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Processor{
		ProcOpts: opts,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// RunUpdates раз в сутки (UpdateAt) обновляет календари за текущий и следующий год.
// Блокируется до вызова Shutdown.
func (p *Processor) RunUpdates() {
	defer close(p.doneCh)

	t := time.NewTimer(p.untilNextRun(time.Now()))
	defer t.Stop()

	for {
		select {
		case <-t.C:
			p.UpdateCurrentYears()
			t.Reset(p.untilNextRun(time.Now()))

		case <-p.stopCh:
			return
		}
	}
}

func (p *Processor) Shutdown(ctx context.Context) error {
	close(p.stopCh)

	select {
	case <-p.doneCh:
		return nil
	case <-ctx.Done():
		log.Printf("[WARN] calendar.Proc shutdown timeout")
		return ctx.Err()
	}
}

func (p *Processor) untilNextRun(now time.Time) time.Duration {
	now = now.In(p.Location)

	nextRun := time.Date(
		now.Year(), now.Month(), now.Day(),
		p.UpdateAt.Hour(), p.UpdateAt.Minute(), p.UpdateAt.Second(), p.UpdateAt.Nanosecond(),
		p.Location,
	)

	d := nextRun.Sub(now)
	if d < 0 {
		d += 24 * time.Hour
	}
	return d
}

// CurrentYear — текущий год по персидскому календарю.
func (p *Processor) CurrentYear() (int, error) {
	today, err := jalali.Today(p.Location)
	if err != nil {
		return 0, fmt.Errorf("calendar/proc cannot determine current year: %w", err)
	}
	return today.Year, nil
}

func (p *Processor) UpdateCurrentYears() {
	y, err := p.CurrentYear()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return
	}

	if err := p.UpdateCalendar(y); err != nil {
		log.Printf("[WARN] calendar/proc cannot update %d: %+v", y, err)
	}

	if err := p.UpdateCalendar(y + 1); err != nil {
		log.Printf("[WARN] calendar/proc cannot update %d: %+v", y+1, err)
	}
}

func (p *Processor) UpdateCalendar(y int) error {
	cal := p.MakeCalendar(y)
	if len(cal) == 0 {
		return fmt.Errorf("calendar/proc no data for year %d", y)
	}

	if err := p.Store.PutYear(y, cal); err != nil {
		return fmt.Errorf("calendar/proc cannot store year %d: %w", y, err)
	}
	log.Printf("[INFO] calendar/proc year %d updated, %d months", y, len(cal))
	return nil
}

// MakeCalendar собирает календарь на один год из источников Src.
// Если два источника возвращают данные на одну дату, данные из последнего заменяют данные из первого.
// Если источник вернет ошибку, он будет пропущен. Если все источники вернут ошибку или Src пуст, то
// возвращается пустой store.Months (len=0).
func (p *Processor) MakeCalendar(y int) store.Months {
	cal := make(store.Months, 12)

	for i, src := range p.Src {
		months, err := src.GetYear(y)
		if err != nil {
			log.Printf("[WARN] calendar/proc skipping source %d (%T), error: %+v", i, src, err)
			continue
		}

		cal = merge(cal, months)
	}

	return cal
}

func merge(m1 store.Months, m2 store.Months) store.Months {
	res := m1.Copy()
	for mon, days := range m2 {
		_, monExists := res[mon]
		if !monExists {
			res[mon] = make(store.Days, len(days))
		}

		for dayNum, day := range days {
			merged := res[mon][dayNum]
			merged.Working = day.Working

			if day.WeekDay != "" {
				merged.WeekDay = day.WeekDay
			}
			if day.Type != "" {
				merged.Type = day.Type
			}
			if day.Desc != "" {
				merged.Desc = day.Desc
			}
			if day.Gregorian != "" {
				merged.Gregorian = day.Gregorian
			}

			res[mon][dayNum] = merged
		}
	}
	return res
}
