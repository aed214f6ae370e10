package jalali

// breaks — годы-границы подциклов большого 2820-летнего цикла (алгоритм Борковского).
// Внутри каждого интервала високосные годы повторяются с периодом 33 года.
var breaks = [...]int{
	-61, 9, 38, 199, 426, 686, 756, 818, 1111, 1181, 1210,
	1635, 2060, 2097, 2192, 2262, 2324, 2394, 2456, 3178,
}

const (
	MinYear = -61  // Первый год, который покрывает таблица breaks.
	MaxYear = 3177 // Последний год, который покрывает таблица breaks.
)

func yearInRange(y int) bool {
	return y >= MinYear && y <= MaxYear
}

// yearInfo описывает начало года y.
type yearInfo struct {
	sinceLeap int // Сколько лет прошло с последнего високосного года (0 — год високосный).
	gy        int // Григорианский год, в котором начинается год y.
	march     int // День марта gy, на который приходится 1 фарвардина.
}

// calcYear требует y в пределах [MinYear, MaxYear].
func calcYear(y int) yearInfo {
	gy := y + 621
	leapJ := -14
	jp := breaks[0]

	jump := 0
	for i := 1; i < len(breaks); i++ {
		jm := breaks[i]
		jump = jm - jp
		if y < jm {
			break
		}
		leapJ += jump/33*8 + (jump%33)/4
		jp = jm
	}
	n := y - jp

	// Кол-во високосных лет по персидскому и григорианскому календарям с 621 г. н. э.
	leapJ += n/33*8 + (n%33+3)/4
	if jump%33 == 4 && jump-n == 4 {
		leapJ++
	}
	leapG := gy/4 - (gy/100+1)*3/4 - 150

	// Ближе чем за 6 лет до границы интервала цикл «сдвигается» к следующему интервалу.
	if jump-n < 6 {
		n = n - jump + (jump+4)/33*33
	}

	// Эквивалентно ((n+1) mod 33) mod 4 == 1 для високосного года.
	sinceLeap := ((n+1)%33 - 1) % 4
	if sinceLeap == -1 {
		sinceLeap = 4
	}

	return yearInfo{
		sinceLeap: sinceLeap,
		gy:        gy,
		march:     20 + leapJ - leapG,
	}
}

// IsLeap сообщает, является ли год y персидского календаря високосным (30 дней в эсфанде).
// Для лет вне [MinYear, MaxYear] возвращает false.
func IsLeap(y int) bool {
	if !yearInRange(y) {
		return false
	}
	return calcYear(y).sinceLeap == 0
}

func IsGregorianLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// DaysInYear возвращает 366 для високосного года и 365 для остальных.
func DaysInYear(y int) int {
	if IsLeap(y) {
		return 366
	}
	return 365
}
