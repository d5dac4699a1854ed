package datenorm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNormalizer() (*Normalizer, time.Time) {
	loc := JakartaLocation()
	now := time.Date(2024, time.June, 15, 14, 30, 0, 0, loc)
	return New(WithLocation(loc), WithClock(func() time.Time { return now })), now
}

func TestParseAbsoluteForms(t *testing.T) {
	n, _ := fixedNormalizer()
	loc := n.Location()

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"indonesian month", "15 Januari 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, loc)},
		{"abbreviated month", "17 Agt 2023", time.Date(2023, 8, 17, 0, 0, 0, 0, loc)},
		{"pebruari spelling", "1 Pebruari 2024", time.Date(2024, 2, 1, 0, 0, 0, 0, loc)},
		{"english month", "3 March 2022", time.Date(2022, 3, 3, 0, 0, 0, 0, loc)},
		{"weekday with clock", "Senin, 15 Januari 2024 10:30 WIB", time.Date(2024, 1, 15, 10, 30, 0, 0, loc)},
		{"pukul clock", "Kamis 11 Januari 2024 pukul 10.30 WIB", time.Date(2024, 1, 11, 10, 30, 0, 0, loc)},
		{"iso date", "2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, loc)},
		{"numeric with pipe", "Rabu, 10/01/2024 | 14:05 WIB", time.Date(2024, 1, 10, 14, 5, 0, 0, loc)},
		{"english month first", "January 2, 2024", time.Date(2024, 1, 2, 0, 0, 0, 0, loc)},
		{"prefixed iso timestamp", "Published: 2024-03-10T08:15:00+07:00", time.Date(2024, 3, 10, 8, 15, 0, 0, loc)},
		{"diterbitkan prefix", "Diterbitkan: 5 Mei 2021", time.Date(2021, 5, 5, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.Parse(tt.raw)
			require.True(t, ok, "expected %q to parse", tt.raw)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			assert.Equal(t, loc, got.Location())
		})
	}
}

func TestParseNumericDayMonthBias(t *testing.T) {
	n, _ := fixedNormalizer()
	loc := n.Location()

	got, ok := n.Parse("05/04/2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 4, 5, 0, 0, 0, 0, loc), got)

	got, ok = n.Parse("04/25/2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 4, 25, 0, 0, 0, 0, loc), got)

	_, ok = n.Parse("13/25/2024")
	assert.False(t, ok)
}

func TestParseRelativeForms(t *testing.T) {
	n, now := fixedNormalizer()
	loc := n.Location()

	got, ok := n.Parse("3 jam yang lalu")
	require.True(t, ok)
	assert.Equal(t, now.Add(-3*time.Hour), got)

	got, ok = n.Parse("15 menit lalu")
	require.True(t, ok)
	assert.Equal(t, now.Add(-15*time.Minute), got)

	got, ok = n.Parse("2 hari lalu")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 13, 0, 0, 0, 0, loc), got)

	got, ok = n.Parse("Kemarin")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, loc), got)

	got, ok = n.Parse("5 hours ago")
	require.True(t, ok)
	assert.Equal(t, now.Add(-5*time.Hour), got)
}

func TestParseRejectsInvalidDates(t *testing.T) {
	n, _ := fixedNormalizer()

	for _, raw := range []string{
		"",
		"lorem ipsum",
		"31 Februari 2024",
		"31/04/2024",
		"15 Januari 2010",
		"15 Januari 2040",
	} {
		_, ok := n.Parse(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
	}
}

func TestNormalizeFallsBackToNow(t *testing.T) {
	n, now := fixedNormalizer()

	got := n.Normalize("tidak ada tanggal")
	assert.True(t, now.Equal(got))
}

func TestNormalizeRoundTrip(t *testing.T) {
	n, _ := fixedNormalizer()
	want := time.Date(2023, time.November, 9, 0, 0, 0, 0, n.Location())

	indonesian := []string{"", "Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli",
		"Agustus", "September", "Oktober", "November", "Desember"}
	raw := want.Format("2") + " " + indonesian[want.Month()] + " " + want.Format("2006")

	assert.Equal(t, want, n.Normalize(raw))
}

func TestJakartaLocationOffset(t *testing.T) {
	loc := JakartaLocation()
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 7*60*60, offset)
}
