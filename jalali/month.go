package jalali

import "time"

// DaysInMonth возвращает длину месяца m года y. Для некорректного месяца — 0.
func DaysInMonth(y int, m Month) int {
	switch {
	case m >= Farvardin && m <= Shahrivar:
		return 31
	case m >= Mehr && m <= Bahman:
		return 30
	case m == Esfand:
		if IsLeap(y) {
			return 30
		}
		return 29
	default:
		return 0
	}
}

var gregorianDays = [...]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func DaysInGregorianMonth(y int, m time.Month) int {
	if m < time.January || m > time.December {
		return 0
	}
	if m == time.February && IsGregorianLeap(y) {
		return 29
	}
	return gregorianDays[m-1]
}

// MonthStart возвращает день недели 1-го числа месяца, т. е. сколько пустых ячеек
// нужно оставить в начале сетки календаря, если неделя начинается с субботы.
func MonthStart(y int, m Month) (Weekday, error) {
	return WeekdayOf(Date{Year: y, Month: m, Day: 1})
}

// AddDays сдвигает дату на n дней (n может быть отрицательным).
func (d Date) AddDays(n int) (Date, error) {
	jdn, err := d.JDN()
	if err != nil {
		return Date{}, err
	}
	return FromJDN(jdn + n)
}

// AddMonths сдвигает дату на n месяцев. Если в целевом месяце меньше дней,
// день усекается до последнего дня месяца (31 шахривара + 1 месяц = 30 мехра).
func (d Date) AddMonths(n int) (Date, error) {
	if err := d.Validate(); err != nil {
		return Date{}, err
	}

	idx := d.Year*12 + int(d.Month-1) + n
	y := floorDiv(idx, 12)
	m := Month(idx - y*12 + 1)

	res := Date{Year: y, Month: m, Day: d.Day}
	if !yearInRange(y) {
		return Date{}, outOfRange(invalidJalali(res, "year out of supported range"))
	}
	if maxDay := DaysInMonth(y, m); res.Day > maxDay {
		res.Day = maxDay
	}
	return res, nil
}

// AddYears сдвигает дату на n лет; 30 эсфанда в невисокосном году становится 29 эсфанда.
func (d Date) AddYears(n int) (Date, error) {
	return d.AddMonths(n * 12)
}

// FirstDay и LastDay возвращают границы месяца даты d.
func (d Date) FirstDay() Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

func (d Date) LastDay() Date {
	return Date{Year: d.Year, Month: d.Month, Day: DaysInMonth(d.Year, d.Month)}
}

// DayOfYear возвращает номер дня в году, начиная с 1.
func (d Date) DayOfYear() int {
	if d.Month <= Shahrivar {
		return int(d.Month-1)*31 + d.Day
	}
	return 186 + int(d.Month-Mehr)*30 + d.Day
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
