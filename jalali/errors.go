package jalali

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrOutOfRange  = errors.New("year out of supported range")
)

// InvalidDateError возвращается всеми конверсиями, если входная дата некорректна.
// Ошибка совпадает с ErrInvalidDate через errors.Is, а для лет вне диапазона — ещё и с ErrOutOfRange.
type InvalidDateError struct {
	Calendar string // "jalali" или "gregorian".
	Year     int
	Month    int
	Day      int
	Reason   string

	outOfRange bool
}

func (e *InvalidDateError) Error() string {
	if e.Year == 0 && e.Month == 0 && e.Day == 0 {
		return fmt.Sprintf("%s: invalid date: %s", e.Calendar, e.Reason)
	}
	return fmt.Sprintf("%s: invalid date %04d-%02d-%02d: %s", e.Calendar, e.Year, e.Month, e.Day, e.Reason)
}

func (e *InvalidDateError) Is(target error) bool {
	if target == ErrInvalidDate {
		return true
	}
	return e.outOfRange && target == ErrOutOfRange
}

func invalidJalali(d Date, reason string) *InvalidDateError {
	return &InvalidDateError{Calendar: "jalali", Year: d.Year, Month: int(d.Month), Day: d.Day, Reason: reason}
}

func invalidGregorian(g Gregorian, reason string) *InvalidDateError {
	return &InvalidDateError{Calendar: "gregorian", Year: g.Year, Month: int(g.Month), Day: g.Day, Reason: reason}
}

func outOfRange(e *InvalidDateError) *InvalidDateError {
	e.outOfRange = true
	return e
}
