// Package jalali реализует персидский (солнечный хиджри) календарь: конвертацию дат
// между григорианским и персидским календарями, високосные годы, длины месяцев и дни недели.
//
// Все вычисления ведутся через номер юлианского дня (JDN), поэтому конвертация,
// високосность и день недели согласованы между собой и не зависят от time.Time.
// Поддерживаются годы с MinYear по MaxYear.
package jalali

import "time"

type Month int

const (
	Farvardin Month = 1 + iota
	Ordibehesht
	Khordad
	Tir
	Mordad
	Shahrivar
	Mehr
	Aban
	Azar
	Dey
	Bahman
	Esfand
)

var monthNames = [...]string{
	"فروردین", "اردیبهشت", "خرداد", "تیر", "مرداد", "شهریور",
	"مهر", "آبان", "آذر", "دی", "بهمن", "اسفند",
}

var monthLatinNames = [...]string{
	"Farvardin", "Ordibehesht", "Khordad", "Tir", "Mordad", "Shahrivar",
	"Mehr", "Aban", "Azar", "Dey", "Bahman", "Esfand",
}

// String возвращает название месяца на фарси.
func (m Month) String() string {
	if !m.Valid() {
		return ""
	}
	return monthNames[m-1]
}

func (m Month) Latin() string {
	if !m.Valid() {
		return ""
	}
	return monthLatinNames[m-1]
}

func (m Month) Valid() bool {
	return m >= Farvardin && m <= Esfand
}

// Date — дата персидского календаря.
type Date struct {
	Year  int
	Month Month
	Day   int
}

// Gregorian — дата григорианского (пролептического) календаря.
type Gregorian struct {
	Year  int
	Month time.Month
	Day   int
}

// Day — любая дата, которую можно свести к номеру юлианского дня.
type Day interface {
	JDN() (int, error)
}

// NewDate проверяет и создает дату.
func NewDate(y int, m Month, d int) (Date, error) {
	date := Date{Year: y, Month: m, Day: d}
	if err := date.Validate(); err != nil {
		return Date{}, err
	}
	return date, nil
}

func NewGregorian(y int, m time.Month, d int) (Gregorian, error) {
	g := Gregorian{Year: y, Month: m, Day: d}
	if err := g.Validate(); err != nil {
		return Gregorian{}, err
	}
	return g, nil
}

// Validate возвращает *InvalidDateError, если дата не существует в персидском календаре.
func (d Date) Validate() error {
	if !yearInRange(d.Year) {
		return outOfRange(invalidJalali(d, "year out of supported range"))
	}
	if !d.Month.Valid() {
		return invalidJalali(d, "month must be within 1..12")
	}
	if d.Day < 1 || d.Day > DaysInMonth(d.Year, d.Month) {
		return invalidJalali(d, "day out of month bounds")
	}
	return nil
}

func (g Gregorian) Validate() error {
	if g.Month < time.January || g.Month > time.December {
		return invalidGregorian(g, "month must be within 1..12")
	}
	if g.Day < 1 || g.Day > DaysInGregorianMonth(g.Year, g.Month) {
		return invalidGregorian(g, "day out of month bounds")
	}

	if g.Year < MinYear+621 || g.Year > MaxYear+622 {
		return outOfRange(invalidGregorian(g, "year out of supported range"))
	}
	jdn := gregorianToJDN(g.Year, int(g.Month), g.Day)
	if jdn < minJDN || jdn > maxJDN {
		return outOfRange(invalidGregorian(g, "year out of supported range"))
	}
	return nil
}

// JDN возвращает номер юлианского дня.
func (d Date) JDN() (int, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	return jalaliToJDN(d.Year, d.Month, d.Day), nil
}

func (g Gregorian) JDN() (int, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	return gregorianToJDN(g.Year, int(g.Month), g.Day), nil
}

// Compare возвращает -1, 0 или 1. Сравнение поэлементное, проверка корректности не выполняется.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month - other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool  { return d == other }

func (d Date) String() string {
	return Format(d)
}

func (g Gregorian) String() string {
	return FormatGregorian(g)
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
