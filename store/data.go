package store

import "github.com/nvkalinin/jalali-calendar/jalali"

type DayType string

const (
	Normal  DayType = "normal"  // Обычный рабочий день.
	Weekend DayType = "weekend" // Выходной (в Иране — пятница).
	Holiday DayType = "holiday" // Официальный праздник, нерабочий.
)

type WeekDay string

const (
	Saturday  WeekDay = "sat"
	Sunday    WeekDay = "sun"
	Monday    WeekDay = "mon"
	Tuesday   WeekDay = "tue"
	Wednesday WeekDay = "wed"
	Thursday  WeekDay = "thu"
	Friday    WeekDay = "fri"
)

func NewWeekDay(wd jalali.Weekday) (WeekDay, bool) {
	// @formatter:off
	switch wd {
	case jalali.Shanbeh:       return Saturday,  true
	case jalali.Yekshanbeh:    return Sunday,    true
	case jalali.Doshanbeh:     return Monday,    true
	case jalali.Seshanbeh:     return Tuesday,   true
	case jalali.Chaharshanbeh: return Wednesday, true
	case jalali.Panjshanbeh:   return Thursday,  true
	case jalali.Jomeh:         return Friday,    true
	default:                   return "",        false
	}
	// @formatter:on
}

// Day — описание дня персидского календаря.
type Day struct {
	WeekDay   WeekDay `json:"weekDay,omitempty" yaml:"weekDay,omitempty"`
	Working   bool    `json:"working" yaml:"working"`
	Type      DayType `json:"type,omitempty" yaml:"type,omitempty"`
	Desc      string  `json:"desc,omitempty" yaml:"desc,omitempty"`
	Gregorian string  `json:"gregorian,omitempty" yaml:"gregorian,omitempty"` // Дата в формате YYYY-MM-DD.
}

// Days — дни месяца, ключ — номер дня.
type Days map[int]Day

// Months — месяцы года, ключ — номер месяца персидского календаря.
type Months map[jalali.Month]Days

func (m Days) Copy() Days {
	mCopy := make(Days, len(m))
	for dayNum, day := range m {
		mCopy[dayNum] = day
	}
	return mCopy
}

func (y Months) Copy() Months {
	yCopy := make(Months, len(y))
	for monNum, month := range y {
		yCopy[monNum] = month.Copy()
	}
	return yCopy
}
