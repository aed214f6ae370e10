package source

import (
	"fmt"

	"github.com/nvkalinin/jalali-calendar/jalali"
	"github.com/nvkalinin/jalali-calendar/store"
)

// Generic генерирует календарь на год, в котором
// дни недели Weekend являются выходными, остальные — рабочие.
type Generic struct {
	Weekend []jalali.Weekday
}

// NewGeneric — календарь с одним выходным в пятницу, как принято в Иране.
func NewGeneric() *Generic {
	return &Generic{
		Weekend: []jalali.Weekday{jalali.Jomeh},
	}
}

func (g *Generic) GetYear(targetYear int) (store.Months, error) {
	first := jalali.Date{Year: targetYear, Month: jalali.Farvardin, Day: 1}
	wd, err := jalali.WeekdayOf(first)
	if err != nil {
		return nil, fmt.Errorf("source/generic cannot make year %d: %w", targetYear, err)
	}

	cal := make(store.Months, 12)

	for mon := jalali.Farvardin; mon <= jalali.Esfand; mon++ {
		days := make(store.Days, 31)
		for d := 1; d <= jalali.DaysInMonth(targetYear, mon); d++ {
			date := jalali.Date{Year: targetYear, Month: mon, Day: d}
			greg, err := jalali.ToGregorian(date)
			if err != nil {
				return nil, fmt.Errorf("source/generic cannot convert %s: %w", date, err)
			}

			isWeekend := g.isWeekend(wd)
			dayType := store.Normal
			if isWeekend {
				dayType = store.Weekend
			}
			storedWd, _ := store.NewWeekDay(wd)

			days[d] = store.Day{
				WeekDay:   storedWd,
				Working:   !isWeekend,
				Type:      dayType,
				Gregorian: greg.String(),
			}

			wd = (wd + 1) % 7
		}
		cal[mon] = days
	}

	return cal, nil
}

func (g *Generic) isWeekend(w jalali.Weekday) bool {
	for _, weekday := range g.Weekend {
		if w == weekday {
			return true
		}
	}
	return false
}
