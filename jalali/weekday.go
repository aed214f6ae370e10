package jalali

import "time"

// Weekday — день недели в персидском порядке: неделя начинается с субботы.
type Weekday int

const (
	Shanbeh Weekday = iota // Суббота.
	Yekshanbeh
	Doshanbeh
	Seshanbeh
	Chaharshanbeh
	Panjshanbeh
	Jomeh // Пятница, выходной.
)

var weekdayNames = [...]string{
	"شنبه", "یکشنبه", "دوشنبه", "سه‌شنبه", "چهارشنبه", "پنج‌شنبه", "جمعه",
}

var weekdayShort = [...]string{"ش", "ی", "د", "س", "چ", "پ", "ج"}

func (w Weekday) String() string {
	if w < Shanbeh || w > Jomeh {
		return ""
	}
	return weekdayNames[w]
}

// Short — однобуквенное обозначение для заголовка сетки календаря.
func (w Weekday) Short() string {
	if w < Shanbeh || w > Jomeh {
		return ""
	}
	return weekdayShort[w]
}

// Std переводит день недели в time.Weekday.
func (w Weekday) Std() time.Weekday {
	return time.Weekday((int(w) + 6) % 7)
}

func WeekdayFromStd(wd time.Weekday) Weekday {
	return Weekday((int(wd) + 1) % 7)
}

// WeekdayOf вычисляет день недели по номеру юлианского дня.
// Для одного и того же дня результат одинаков для Date и Gregorian.
func WeekdayOf(d Day) (Weekday, error) {
	jdn, err := d.JDN()
	if err != nil {
		return 0, err
	}
	return weekdayOfJDN(jdn), nil
}

func weekdayOfJDN(jdn int) Weekday {
	// JDN 0 — понедельник, а суббота — пятый день.
	return Weekday((jdn + 2) % 7)
}

func (d Date) Weekday() (Weekday, error) {
	return WeekdayOf(d)
}

func (g Gregorian) Weekday() (Weekday, error) {
	return WeekdayOf(g)
}
