package source

import (
	"fmt"
	"os"

	"github.com/nvkalinin/jalali-calendar/jalali"
	"github.com/nvkalinin/jalali-calendar/log"
	"github.com/nvkalinin/jalali-calendar/store"
	"gopkg.in/yaml.v3"
)

// Override - источник, который берет данные из YAML-файла.
// Годы и месяцы — по персидскому календарю.
type Override struct {
	Path string
}

type overrides map[int]store.Months // Ключ - год.

func (o *Override) GetYear(y int) (store.Months, error) {
	// Админ может менять файл, поэтому читаем его при каждом вызове.
	f, err := os.ReadFile(o.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot read overrides yaml: %w", err)
	}

	ov := overrides{}
	if err := yaml.Unmarshal(f, &ov); err != nil {
		return nil, fmt.Errorf("cannot parse overrides yaml: %w", err)
	}

	return validDays(y, ov[y]), nil
}

// validDays отбрасывает дни, которых нет в персидском календаре (например, 30 эсфанда невисокосного года).
func validDays(y int, months store.Months) store.Months {
	res := make(store.Months, len(months))
	for mon, days := range months {
		for num, day := range days {
			date := jalali.Date{Year: y, Month: mon, Day: num}
			if err := date.Validate(); err != nil {
				log.Printf("[WARN] source/override year %d: skipping month %d day %d: %v", y, mon, num, err)
				continue
			}

			if _, ok := res[mon]; !ok {
				res[mon] = make(store.Days, len(days))
			}
			res[mon][num] = day
		}
	}
	return res
}
