package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/nvkalinin/jalali-calendar/jalali"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_toJalali(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := &Convert{ToJalali: "2024-03-20", Layout: "%A %e %B %Y", out: out}
	require.NoError(t, cmd.Execute(nil))

	exp := "jalali:    1403/01/01\n" +
		"gregorian: 2024-03-20\n" +
		"weekday:   چهارشنبه (Wednesday)\n" +
		"چهارشنبه 1 فروردین 1403\n"
	assert.Equal(t, exp, out.String())
}

func TestConvert_toGregorian(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := &Convert{ToGregorian: "۱۴۰۳/۱۲/۳۰", Layout: "%d/%m", FaDigits: true, out: out}
	require.NoError(t, cmd.Execute(nil))

	exp := "jalali:    ۱۴۰۳/۱۲/۳۰\n" +
		"gregorian: 2025-03-20\n" +
		"weekday:   " + jalali.Panjshanbeh.String() + " (Thursday)\n" +
		"۳۰/۱۲\n"
	assert.Equal(t, exp, out.String())
}

func TestConvert_now(t *testing.T) {
	tehran := time.FixedZone("IRST", 3*3600+1800)
	out := &bytes.Buffer{}
	cmd := &Convert{
		Now:    true,
		Layout: "%Y/%m/%d - %H:%M",
		out:    out,
		now: func() time.Time {
			return time.Date(2024, time.March, 19, 21, 15, 0, 0, time.UTC).In(tehran)
		},
	}
	require.NoError(t, cmd.Execute(nil))

	exp := "jalali:    1403/01/01\n" +
		"gregorian: 2024-03-20\n" +
		"weekday:   چهارشنبه (Wednesday)\n" +
		"1403/01/01 - 00:45\n"
	assert.Equal(t, exp, out.String())
}

func TestConvert_errors(t *testing.T) {
	err := (&Convert{out: &bytes.Buffer{}}).Execute(nil)
	assert.ErrorContains(t, err, "is required")

	err = (&Convert{ToJalali: "2024-03-20", ToGregorian: "1403/01/01", out: &bytes.Buffer{}}).Execute(nil)
	assert.ErrorContains(t, err, "only one of")

	err = (&Convert{ToJalali: "2024-03-20", Now: true, out: &bytes.Buffer{}}).Execute(nil)
	assert.ErrorContains(t, err, "only one of")

	future := func() time.Time { return time.Date(3900, time.January, 1, 0, 0, 0, 0, time.UTC) }
	err = (&Convert{Now: true, out: &bytes.Buffer{}, now: future}).Execute(nil)
	assert.ErrorIs(t, err, jalali.ErrOutOfRange)

	err = (&Convert{ToGregorian: "1404/12/30", out: &bytes.Buffer{}}).Execute(nil)
	assert.ErrorIs(t, err, jalali.ErrInvalidDate)

	err = (&Convert{ToJalali: "0100-01-01", out: &bytes.Buffer{}}).Execute(nil)
	assert.ErrorIs(t, err, jalali.ErrOutOfRange)
}
