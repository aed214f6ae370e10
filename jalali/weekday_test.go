package jalali

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayOf(t *testing.T) {
	wd, err := WeekdayOf(Date{1358, Farvardin, 1})
	require.NoError(t, err)
	assert.Equal(t, Chaharshanbeh, wd) // 21 марта 1979 — среда.

	wd, err = WeekdayOf(Gregorian{2000, time.January, 1})
	require.NoError(t, err)
	assert.Equal(t, Shanbeh, wd)

	wd, err = Date{1403, Esfand, 30}.Weekday()
	require.NoError(t, err)
	assert.Equal(t, Panjshanbeh, wd)

	_, err = WeekdayOf(Date{1404, Esfand, 30})
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = Gregorian{2023, time.February, 29}.Weekday()
	assert.ErrorIs(t, err, ErrInvalidDate)
}

// Один и тот же день в обоих календарях дает один и тот же день недели.
func TestWeekdayOf_consistent(t *testing.T) {
	g := Gregorian{1950, time.January, 1}
	for g.Year < 2100 {
		j, err := ToJalali(g)
		require.NoError(t, err)

		wdG, err := WeekdayOf(g)
		require.NoError(t, err)
		wdJ, err := WeekdayOf(j)
		require.NoError(t, err)
		require.Equal(t, wdG, wdJ, "%s / %s", g, j)

		g = nextGregorian(g)
	}
}

func TestWeekday_Std(t *testing.T) {
	// @formatter:off
	pairs := map[Weekday]time.Weekday{
		Shanbeh:       time.Saturday,
		Yekshanbeh:    time.Sunday,
		Doshanbeh:     time.Monday,
		Seshanbeh:     time.Tuesday,
		Chaharshanbeh: time.Wednesday,
		Panjshanbeh:   time.Thursday,
		Jomeh:         time.Friday,
	}
	// @formatter:on
	for wd, std := range pairs {
		assert.Equal(t, std, wd.Std())
		assert.Equal(t, wd, WeekdayFromStd(std))
	}
}

func TestWeekday_String(t *testing.T) {
	assert.Equal(t, "شنبه", Shanbeh.String())
	assert.Equal(t, "جمعه", Jomeh.String())
	assert.Equal(t, "ش", Shanbeh.Short())
	assert.Equal(t, "ج", Jomeh.Short())
	assert.Equal(t, "", Weekday(7).String())
	assert.Equal(t, "", Weekday(-1).Short())
}
