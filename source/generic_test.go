package source

import (
	"testing"

	"github.com/nvkalinin/jalali-calendar/jalali"
	"github.com/nvkalinin/jalali-calendar/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneric_GetYear(t *testing.T) {
	generic := NewGeneric()
	year, err := generic.GetYear(1403)
	require.NoError(t, err)

	require.Len(t, year, 12)
	total := 0
	for mon := jalali.Farvardin; mon <= jalali.Esfand; mon++ {
		assert.Len(t, year[mon], jalali.DaysInMonth(1403, mon), "month %d", mon)
		total += len(year[mon])
	}
	assert.Equal(t, 366, total)

	// @formatter:off
	expFirstWeek := store.Days{
		1: {WeekDay: store.Wednesday, Working: true,  Type: store.Normal,  Gregorian: "2024-03-20"},
		2: {WeekDay: store.Thursday,  Working: true,  Type: store.Normal,  Gregorian: "2024-03-21"},
		3: {WeekDay: store.Friday,    Working: false, Type: store.Weekend, Gregorian: "2024-03-22"},
		4: {WeekDay: store.Saturday,  Working: true,  Type: store.Normal,  Gregorian: "2024-03-23"},
	}
	// @formatter:on
	for d, exp := range expFirstWeek {
		assert.Equal(t, exp, year[jalali.Farvardin][d])
	}

	assert.Equal(t, store.Day{WeekDay: store.Thursday, Working: true, Type: store.Normal, Gregorian: "2025-03-20"},
		year[jalali.Esfand][30])

	// Все пятницы — выходные, остальные дни — рабочие.
	for _, days := range year {
		for _, day := range days {
			assert.Equal(t, day.WeekDay == store.Friday, !day.Working)
		}
	}
}

func TestGeneric_GetYear_weekend(t *testing.T) {
	generic := &Generic{Weekend: []jalali.Weekday{jalali.Panjshanbeh, jalali.Jomeh}}
	year, err := generic.GetYear(1404)
	require.NoError(t, err)

	assert.Len(t, year[jalali.Esfand], 29)
	assert.Equal(t, store.Weekend, year[jalali.Farvardin][7].Type) // 1404/01/07 — четверг.
	assert.Equal(t, store.Weekend, year[jalali.Farvardin][1].Type) // 1404/01/01 — пятница.
	assert.Equal(t, store.Normal, year[jalali.Farvardin][2].Type)
}

func TestGeneric_GetYear_outOfRange(t *testing.T) {
	_, err := NewGeneric().GetYear(jalali.MaxYear + 1)
	assert.ErrorIs(t, err, jalali.ErrOutOfRange)
}
