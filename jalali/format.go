package jalali

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Format возвращает дату в виде YYYY/MM/DD — так она показывается пользователю.
func Format(d Date) string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// FormatGregorian возвращает дату в формате ISO-8601 (YYYY-MM-DD) для скрытого поля формы.
func FormatGregorian(g Gregorian) string {
	return fmt.Sprintf("%04d-%02d-%02d", g.Year, g.Month, g.Day)
}

// Parse разбирает персидскую дату YYYY/MM/DD (или YYYY-MM-DD), обратна Format.
// Цифры могут быть персидскими или арабскими, разделитель во всей строке один.
func Parse(s string) (Date, error) {
	sep := "/"
	if !strings.Contains(s, sep) {
		sep = "-"
	}
	y, m, d, err := splitDate(s, sep)
	if err != nil {
		return Date{}, &InvalidDateError{Calendar: "jalali", Reason: fmt.Sprintf("cannot parse %q: %v", s, err)}
	}
	return NewDate(y, Month(m), d)
}

// ParseGregorian разбирает дату в формате ISO-8601 (YYYY-MM-DD).
func ParseGregorian(s string) (Gregorian, error) {
	y, m, d, err := splitDate(s, "-")
	if err != nil {
		return Gregorian{}, &InvalidDateError{Calendar: "gregorian", Reason: fmt.Sprintf("cannot parse %q: %v", s, err)}
	}
	g := Gregorian{Year: y, Month: time.Month(m), Day: d}
	if err := g.Validate(); err != nil {
		return Gregorian{}, err
	}
	return g, nil
}

// splitDate делит строку ровно на три числа по разделителю sep. Минус перед годом — знак,
// остальные части состоят только из цифр.
func splitDate(s string, sep string) (y, m, d int, err error) {
	s = strings.TrimSpace(LatinDigits(s))

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 parts separated by %q, got %d", sep, len(parts))
	}

	nums := [3]int{}
	for i, p := range parts {
		if !isDigits(p) {
			return 0, 0, 0, fmt.Errorf("part %d %q is not a number", i+1, p)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, err
		}
		nums[i] = n
	}

	if neg {
		nums[0] = -nums[0]
	}
	return nums[0], nums[1], nums[2], nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatLayout форматирует дату по шаблону в стиле strftime. Поддерживаются:
//
//	%Y — год (1403), %y — две последние цифры года,
//	%m — месяц с нулём (01), %n — месяц без нуля,
//	%d — день с нулём (05), %e — день без нуля,
//	%B — название месяца, %A — день недели, %a — день недели одной буквой,
//	%% — знак процента.
//
// Неизвестные директивы выводятся как есть, в том числе %H, %M и %S (см. FormatTime).
func FormatLayout(d Date, layout string) (string, error) {
	return formatLayout(d, nil, layout)
}

// FormatTime переводит момент t в персидскую дату (в поясе t) и форматирует его по шаблону.
// Кроме директив FormatLayout, поддерживаются %H — часы (00–23), %M — минуты, %S — секунды.
// Например, "%Y/%m/%d - %H:%M" даёт "1403/01/01 - 14:05".
func FormatTime(t time.Time, layout string) (string, error) {
	d, err := FromTime(t)
	if err != nil {
		return "", err
	}
	return formatLayout(d, &t, layout)
}

// formatLayout выводит директивы времени, только если t != nil.
func formatLayout(d Date, t *time.Time, layout string) (string, error) {
	wd, err := WeekdayOf(d)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(layout) + 16)

	verb := false
	for _, r := range layout {
		if !verb {
			if r == '%' {
				verb = true
			} else {
				b.WriteRune(r)
			}
			continue
		}
		verb = false

		switch r {
		case 'Y':
			fmt.Fprintf(&b, "%04d", d.Year)
		case 'y':
			fmt.Fprintf(&b, "%02d", d.Year%100)
		case 'm':
			fmt.Fprintf(&b, "%02d", d.Month)
		case 'n':
			b.WriteString(strconv.Itoa(int(d.Month)))
		case 'd':
			fmt.Fprintf(&b, "%02d", d.Day)
		case 'e':
			b.WriteString(strconv.Itoa(d.Day))
		case 'B':
			b.WriteString(d.Month.String())
		case 'A':
			b.WriteString(wd.String())
		case 'a':
			b.WriteString(wd.Short())
		case 'H', 'M', 'S':
			if t == nil {
				b.WriteRune('%')
				b.WriteRune(r)
				break
			}
			v := t.Hour()
			if r == 'M' {
				v = t.Minute()
			} else if r == 'S' {
				v = t.Second()
			}
			fmt.Fprintf(&b, "%02d", v)
		case '%':
			b.WriteRune('%')
		default:
			b.WriteRune('%')
			b.WriteRune(r)
		}
	}
	if verb {
		b.WriteRune('%')
	}

	return b.String(), nil
}

const (
	persianZero = '۰'
	arabicZero  = '٠'
)

var toPersian = runes.Map(func(r rune) rune {
	if r >= '0' && r <= '9' {
		return persianZero + (r - '0')
	}
	return r
})

var toLatin = runes.Map(func(r rune) rune {
	switch {
	case r >= persianZero && r <= persianZero+9:
		return '0' + (r - persianZero)
	case r >= arabicZero && r <= arabicZero+9:
		return '0' + (r - arabicZero)
	default:
		return r
	}
})

// PersianDigits заменяет латинские цифры на персидские (۰–۹).
func PersianDigits(s string) string {
	res, _, err := transform.String(toPersian, s)
	if err != nil {
		return s
	}
	return res
}

// LatinDigits заменяет персидские и арабские цифры на латинские.
func LatinDigits(s string) string {
	res, _, err := transform.String(toLatin, s)
	if err != nil {
		return s
	}
	return res
}
