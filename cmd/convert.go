package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nvkalinin/jalali-calendar/jalali"
)

// Convert переводит дату между календарями без обращения к серверу.
type Convert struct {
	ToJalali    string `long:"to-jalali" short:"j" value-name:"YYYY-MM-DD" description:"Григорианская дата, которую нужно перевести в персидский календарь."`
	ToGregorian string `long:"to-gregorian" short:"g" value-name:"YYYY/MM/DD" description:"Персидская дата, которую нужно перевести в григорианский календарь. Допускаются персидские цифры."`
	Now         bool   `long:"now" short:"n" description:"Перевести текущий момент (в локальном поясе). В формате доступны %H %M %S."`
	Layout      string `long:"layout" short:"l" default:"%A %e %B %Y" description:"Формат персидской даты: %Y %y %m %n %d %e %B %A %a %%."`
	FaDigits    bool   `long:"fa-digits" description:"Выводить персидскую дату персидскими цифрами."`

	out io.Writer
	now func() time.Time
}

func (c *Convert) Execute(args []string) error {
	j, g, err := c.convert()
	if err != nil {
		return err
	}

	wd, err := j.Weekday()
	if err != nil {
		return err
	}

	layout := c.Layout
	if layout == "" {
		layout = "%A %e %B %Y"
	}
	var human string
	if c.Now {
		human, err = jalali.FormatTime(c.moment(), layout)
	} else {
		human, err = jalali.FormatLayout(j, layout)
	}
	if err != nil {
		return err
	}

	jstr := jalali.Format(j)
	if c.FaDigits {
		jstr = jalali.PersianDigits(jstr)
		human = jalali.PersianDigits(human)
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintf(out, "jalali:    %s\ngregorian: %s\nweekday:   %s (%s)\n%s\n",
		jstr, jalali.FormatGregorian(g), wd, wd.Std(), human)
	return err
}

func (c *Convert) moment() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Convert) convert() (jalali.Date, jalali.Gregorian, error) {
	set := 0
	for _, ok := range []bool{c.ToJalali != "", c.ToGregorian != "", c.Now} {
		if ok {
			set++
		}
	}

	switch {
	case set > 1:
		return jalali.Date{}, jalali.Gregorian{}, errors.New("only one of --to-jalali, --to-gregorian and --now can be set")

	case c.Now:
		t := c.moment()
		j, err := jalali.FromTime(t)
		return j, jalali.Gregorian{Year: t.Year(), Month: t.Month(), Day: t.Day()}, err

	case c.ToJalali != "":
		g, err := jalali.ParseGregorian(c.ToJalali)
		if err != nil {
			return jalali.Date{}, jalali.Gregorian{}, err
		}
		j, err := jalali.ToJalali(g)
		return j, g, err

	case c.ToGregorian != "":
		j, err := jalali.Parse(c.ToGregorian)
		if err != nil {
			return jalali.Date{}, jalali.Gregorian{}, err
		}
		g, err := jalali.ToGregorian(j)
		return j, g, err

	default:
		return jalali.Date{}, jalali.Gregorian{}, errors.New("one of --to-jalali, --to-gregorian or --now is required")
	}
}
