package parser

import (
	"strconv"
	"strings"

	"github.com/nvkalinin/jalali-calendar/jalali"
	"golang.org/x/text/unicode/norm"
)

// На сайтах встречаются арабские «ي» и «ك» вместо персидских, а также лишние ZWNJ и пробелы.
var persianLetters = strings.NewReplacer(
	"ي", "ی",
	"ك", "ک",
	"‌", "",
)

func cleanText(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

func mapMonthName(name string) (jalali.Month, bool) {
	cleanName := persianLetters.Replace(cleanText(name))
	for m := jalali.Farvardin; m <= jalali.Esfand; m++ {
		if persianLetters.Replace(m.String()) == cleanName || strings.EqualFold(m.Latin(), cleanName) {
			return m, true
		}
	}
	return 0, false
}

// parseNum разбирает число, записанное латинскими, персидскими или арабскими цифрами.
func parseNum(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(jalali.LatinDigits(s)))
}

func dayInMonth(y int, m jalali.Month, d int) bool {
	return d >= 1 && d <= jalali.DaysInMonth(y, m)
}
