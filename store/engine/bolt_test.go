package engine

import (
	"os"
	"testing"

	"github.com/nvkalinin/jalali-calendar/jalali"
	"github.com/nvkalinin/jalali-calendar/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample1403 = store.Months{
	jalali.Farvardin: store.Days{
		1: store.Day{WeekDay: store.Wednesday, Working: false, Type: store.Holiday, Desc: "Nowruz", Gregorian: "2024-03-20"},
		2: store.Day{WeekDay: store.Thursday, Working: false, Type: store.Holiday, Desc: "Nowruz", Gregorian: "2024-03-21"},
	},
	jalali.Esfand: store.Days{
		30: store.Day{WeekDay: store.Thursday, Working: true, Type: store.Normal, Gregorian: "2025-03-20"},
	},
}

func TestBolt(t *testing.T) {
	b, _ := makeBolt(t)
	defer b.Close()

	// Пустая БД.
	_, ok := b.FindYear(1403)
	assert.False(t, ok)
	_, ok = b.FindMonth(1403, jalali.Farvardin)
	assert.False(t, ok)

	err := b.PutYear(1403, sample1403)
	require.NoError(t, err)

	y, ok := b.FindYear(1403)
	assert.True(t, ok)
	assert.Equal(t, sample1403, y)

	m, ok := b.FindMonth(1403, jalali.Esfand)
	assert.True(t, ok)
	assert.Equal(t, sample1403[jalali.Esfand], m)

	d, ok := b.FindDay(1403, jalali.Farvardin, 2)
	assert.True(t, ok)
	assert.Equal(t, sample1403[jalali.Farvardin][2], *d)

	// Месяца нет, но бакет уже существует.
	_, ok = b.FindMonth(1403, jalali.Tir)
	assert.False(t, ok)
	_, ok = b.FindDay(1403, jalali.Farvardin, 3)
	assert.False(t, ok)

	// Префикс /140/ не должен захватывать /1403/.
	_, ok = b.FindYear(140)
	assert.False(t, ok)
}

func TestBolt_backup(t *testing.T) {
	b, dir := makeBolt(t)

	err := b.PutYear(1403, sample1403)
	require.NoError(t, err)

	f, err := os.Create(dir + "/backup.bolt")
	require.NoError(t, err)

	err = b.Backup(f)
	require.NoError(t, err)

	err = f.Close()
	require.NoError(t, err)
	err = b.Close()
	require.NoError(t, err)

	// Создать Bolt из бекапа и проверить, что все данные там.
	b, err = NewBolt(dir + "/backup.bolt")
	require.NoError(t, err)
	defer b.Close()

	y, ok := b.FindYear(1403)
	assert.True(t, ok)
	assert.Equal(t, sample1403, y)
}

func makeBolt(t *testing.T) (b *Bolt, dir string) {
	dir = t.TempDir()
	b, err := NewBolt(dir + "/db.bolt")
	require.NoError(t, err)
	return b, dir
}
