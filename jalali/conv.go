package jalali

import "time"

var (
	minJDN = jalaliToJDN(MinYear, Farvardin, 1)
	maxJDN = jalaliToJDN(MaxYear, Esfand, DaysInMonth(MaxYear, Esfand))
)

// ToJalali переводит григорианскую дату в персидскую.
func ToJalali(g Gregorian) (Date, error) {
	jdn, err := g.JDN()
	if err != nil {
		return Date{}, err
	}
	return jdnToJalali(jdn), nil
}

// ToGregorian переводит персидскую дату в григорианскую. Обратна ToJalali.
func ToGregorian(d Date) (Gregorian, error) {
	jdn, err := d.JDN()
	if err != nil {
		return Gregorian{}, err
	}
	return jdnToGregorian(jdn), nil
}

// FromJDN возвращает персидскую дату по номеру юлианского дня.
func FromJDN(jdn int) (Date, error) {
	if jdn < minJDN || jdn > maxJDN {
		g := jdnToGregorian(jdn)
		return Date{}, outOfRange(invalidGregorian(g, "year out of supported range"))
	}
	return jdnToJalali(jdn), nil
}

// FromTime возвращает персидскую дату для календарного дня t в его часовом поясе.
// Для дат вне поддерживаемого диапазона возвращает ErrOutOfRange.
func FromTime(t time.Time) (Date, error) {
	return ToJalali(Gregorian{Year: t.Year(), Month: t.Month(), Day: t.Day()})
}

// Today — текущая дата в часовом поясе loc.
func Today(loc *time.Location) (Date, error) {
	return FromTime(time.Now().In(loc))
}

// Time возвращает полночь дня d в часовом поясе loc.
func (d Date) Time(loc *time.Location) (time.Time, error) {
	g, err := ToGregorian(d)
	if err != nil {
		return time.Time{}, err
	}
	return g.Time(loc), nil
}

func (g Gregorian) Time(loc *time.Location) time.Time {
	return time.Date(g.Year, g.Month, g.Day, 0, 0, 0, 0, loc)
}

// Все функции ниже работают с целочисленным делением с усечением к нулю (как в Go).
// Формулы для григорианского календаря корректны для годов > -100100.

func gregorianToJDN(gy, gm, gd int) int {
	d := (gy+(gm-8)/6+100100)*1461/4 +
		(153*((gm+9)%12)+2)/5 +
		gd - 34840408
	return d - (gy+100100+(gm-8)/6)/100*3/4 + 752
}

func jdnToGregorian(jdn int) Gregorian {
	j := 4*jdn + 139361631
	j += (4*jdn+183187720)/146097*3/4*4 - 3908
	i := (j%1461)/4*5 + 308

	gd := (i%153)/5 + 1
	gm := (i/153)%12 + 1
	gy := j/1461 - 100100 + (8-gm)/6

	return Gregorian{Year: gy, Month: time.Month(gm), Day: gd}
}

func jalaliToJDN(jy int, jm Month, jd int) int {
	info := calcYear(jy)
	m := int(jm)
	// Первые 6 месяцев по 31 дню, остальные по 30.
	return gregorianToJDN(info.gy, 3, info.march) + (m-1)*31 - m/7*(m-7) + jd - 1
}

func jdnToJalali(jdn int) Date {
	gy := jdnToGregorian(jdn).Year
	jy := gy - 621
	info := calcYear(jy)
	firstDay := gregorianToJDN(gy, 3, info.march)

	k := jdn - firstDay // Дней с 1 фарвардина.
	if k >= 0 {
		if k <= 185 {
			return Date{Year: jy, Month: Month(1 + k/31), Day: k%31 + 1}
		}
		k -= 186
	} else {
		// Дата в конце предыдущего года: считаем от 1 мехра прошлого года.
		jy--
		k += 179
		if info.sinceLeap == 1 {
			k++
		}
	}
	return Date{Year: jy, Month: Month(7 + k/30), Day: k%30 + 1}
}
