// Package datenorm turns the free-form publication dates found on Indonesian
// news portals into calendar dates in a single reference timezone.
package datenorm

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/mo"
)

const (
	// DefaultMinYear and DefaultMaxYear bound the years accepted from absolute patterns.
	DefaultMinYear = 2015
	DefaultMaxYear = 2035

	jakartaZone = "Asia/Jakarta"
)

var months = map[string]time.Month{
	"januari": time.January, "january": time.January, "jan": time.January,
	"februari": time.February, "pebruari": time.February, "february": time.February, "feb": time.February, "peb": time.February,
	"maret": time.March, "march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"mei": time.May, "may": time.May,
	"juni": time.June, "june": time.June, "jun": time.June,
	"juli": time.July, "july": time.July, "jul": time.July,
	"agustus": time.August, "august": time.August, "agu": time.August, "agt": time.August, "ags": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"oktober": time.October, "october": time.October, "okt": time.October, "oct": time.October,
	"november": time.November, "nopember": time.November, "nov": time.November, "nop": time.November,
	"desember": time.December, "december": time.December, "des": time.December, "dec": time.December,
}

const weekdayAlt = `senin|selasa|rabu|kamis|jumat|jum'at|sabtu|minggu|ahad|monday|tuesday|wednesday|thursday|friday|saturday|sunday`

var (
	prefixRe   = regexp.MustCompile(`(?i)^\s*(published|diterbitkan|dipublikasikan|dipublikasi|diperbarui|diupdate|updated|posted|tanggal|tgl\.?|date)(\s+on)?\s*:?\s*`)
	relativeRe = regexp.MustCompile(`(\d+)\s*(detik|menit|jam|hari|minggu|pekan|bulan|tahun|seconds?|secs?|minutes?|mins?|hours?|hrs?|days?|weeks?|months?|years?)\s+(?:yang\s+)?(?:lalu|ago)`)
	justNowRe  = regexp.MustCompile(`\b(baru saja|just now|beberapa detik lalu)\b`)
	yesterRe   = regexp.MustCompile(`\b(kemarin|yesterday)\b`)

	tzSuffixRe = regexp.MustCompile(`\b(wib|wita|wit|gmt|utc)\s*([+-]\s*\d{1,2}(:?\d{2})?)?`)
	offsetRe   = regexp.MustCompile(`\s[+-]\d{2}:?\d{2}\s*$`)
	pukulRe    = regexp.MustCompile(`pukul\s+(\d{1,2})[.:](\d{2})`)
	clockRe    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})(?::(\d{2}))?\b`)
	weekdayRe  = regexp.MustCompile(`\b(` + weekdayAlt + `)\b`)
	spaceRe    = regexp.MustCompile(`\s+`)

	dayMonthYearRe  = regexp.MustCompile(`\b(\d{1,2})[\s\-]+([a-z]+)\.?[\s\-]+(\d{4})\b`)
	isoDateRe       = regexp.MustCompile(`\b(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})\b`)
	numericDMYRe    = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})\b`)
	weekdayLongRe   = regexp.MustCompile(`\b(?:` + weekdayAlt + `)\s+(?:(\d{1,2})\s+([a-z]+)|([a-z]+)\s+(\d{1,2}))\s+(\d{4})\b`)
	monthDayYearRe  = regexp.MustCompile(`\b([a-z]+)\.?\s+(\d{1,2})\s+(\d{4})\b`)
	isoFastPathForm = []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z0700",
		"2006-01-02T15:04:05.000Z0700",
	}
	isoLocalForm = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
)

// Normalizer parses raw date strings. It never fails: when nothing matches it
// returns the current time in the reference zone and logs a warning.
type Normalizer struct {
	loc     *time.Location
	now     func() time.Time
	minYear int
	maxYear int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLocation overrides the reference timezone.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.loc = loc
		}
	}
}

// WithClock overrides the source of "now" used for relative forms and the fallback.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		if now != nil {
			n.now = now
		}
	}
}

// WithYearRange overrides the accepted year bounds.
func WithYearRange(min, max int) Option {
	return func(n *Normalizer) {
		n.minYear = min
		n.maxYear = max
	}
}

// JakartaLocation returns the WIB zone, falling back to a fixed +07:00 zone
// when the tz database is not available.
func JakartaLocation() *time.Location {
	loc, err := time.LoadLocation(jakartaZone)
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

// New creates a Normalizer using Asia/Jakarta as reference zone.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		loc:     JakartaLocation(),
		now:     time.Now,
		minYear: DefaultMinYear,
		maxYear: DefaultMaxYear,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Location returns the reference timezone.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Normalize parses raw and always returns a date.
func (n *Normalizer) Normalize(raw string) time.Time {
	if t, ok := n.Parse(raw); ok {
		return t
	}
	log.Warn().Str("raw", raw).Msg("Unparseable article date, falling back to now")
	return n.now().In(n.loc)
}

// Parse reports whether raw matched any supported form.
func (n *Normalizer) Parse(raw string) (time.Time, bool) {
	stripped := stripPrefixes(raw)
	if stripped == "" {
		return time.Time{}, false
	}

	if t := n.parseISO(stripped); t.IsPresent() {
		return t.MustGet(), true
	}

	lower := strings.ToLower(stripped)
	if t := n.parseRelative(lower); t.IsPresent() {
		return t.MustGet(), true
	}

	withWeekday, clock := cleanAbsolute(lower)
	plain := collapse(weekdayRe.ReplaceAllString(withWeekday, " "))

	patterns := []func() mo.Option[time.Time]{
		func() mo.Option[time.Time] { return n.parseDayMonthYear(plain) },
		func() mo.Option[time.Time] { return n.parseISODate(plain) },
		func() mo.Option[time.Time] { return n.parseNumericDMY(plain) },
		func() mo.Option[time.Time] { return n.parseWeekdayLong(withWeekday) },
		func() mo.Option[time.Time] { return n.parseMonthDayYear(plain) },
	}
	for _, p := range patterns {
		if t, ok := p().Get(); ok {
			return clock.apply(t), true
		}
	}
	return time.Time{}, false
}

func stripPrefixes(raw string) string {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))
	for {
		next := prefixRe.ReplaceAllString(s, "")
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func (n *Normalizer) parseISO(s string) mo.Option[time.Time] {
	for _, layout := range isoFastPathForm {
		if t, err := time.Parse(layout, s); err == nil && n.yearOK(t.Year()) {
			return mo.Some(t.In(n.loc))
		}
	}
	for _, layout := range isoLocalForm {
		if t, err := time.ParseInLocation(layout, s, n.loc); err == nil && n.yearOK(t.Year()) {
			return mo.Some(t)
		}
	}
	return mo.None[time.Time]()
}

func (n *Normalizer) parseRelative(s string) mo.Option[time.Time] {
	now := n.now().In(n.loc)

	if justNowRe.MatchString(s) {
		return mo.Some(now)
	}

	if m := relativeRe.FindStringSubmatch(s); m != nil {
		amount, err := strconv.Atoi(m[1])
		if err != nil {
			return mo.None[time.Time]()
		}
		unit := m[2]
		switch {
		case unit == "detik" || strings.HasPrefix(unit, "sec"):
			return mo.Some(now.Add(-time.Duration(amount) * time.Second))
		case unit == "minggu" || unit == "pekan" || strings.HasPrefix(unit, "week"):
			return mo.Some(n.truncate(now.AddDate(0, 0, -7*amount)))
		case unit == "menit" || strings.HasPrefix(unit, "min"):
			return mo.Some(now.Add(-time.Duration(amount) * time.Minute))
		case unit == "hari" || strings.HasPrefix(unit, "day"):
			return mo.Some(n.truncate(now.AddDate(0, 0, -amount)))
		case unit == "jam" || strings.HasPrefix(unit, "h"):
			return mo.Some(now.Add(-time.Duration(amount) * time.Hour))
		case unit == "bulan" || strings.HasPrefix(unit, "month"):
			return mo.Some(n.truncate(now.AddDate(0, -amount, 0)))
		case unit == "tahun" || strings.HasPrefix(unit, "year"):
			return mo.Some(n.truncate(now.AddDate(-amount, 0, 0)))
		}
	}

	if yesterRe.MatchString(s) && !dayMonthYearRe.MatchString(s) {
		return mo.Some(n.truncate(now.AddDate(0, 0, -1)))
	}

	return mo.None[time.Time]()
}

// clockTime is a time of day found next to an absolute date.
type clockTime struct {
	hour, minute, second int
	ok                   bool
}

func (c clockTime) apply(t time.Time) time.Time {
	if !c.ok {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), c.hour, c.minute, c.second, 0, t.Location())
}

// cleanAbsolute removes timezone suffixes and clock fragments, remembering the
// clock so an absolute date can carry a meaningful time of day.
func cleanAbsolute(s string) (string, clockTime) {
	var clock clockTime

	s = strings.NewReplacer(",", " ", "|", " ", "\u2013", " ", "\u2014", " ", "(", " ", ")", " ").Replace(s)
	s = tzSuffixRe.ReplaceAllString(s, " ")
	s = offsetRe.ReplaceAllString(s, " ")

	if m := pukulRe.FindStringSubmatch(s); m != nil {
		clock = newClock(m[1], m[2], "")
		s = pukulRe.ReplaceAllString(s, " ")
	}
	if m := clockRe.FindStringSubmatch(s); m != nil {
		if !clock.ok {
			clock = newClock(m[1], m[2], m[3])
		}
		s = clockRe.ReplaceAllString(s, " ")
	}

	return collapse(s), clock
}

func newClock(h, m, sec string) clockTime {
	hour, err1 := strconv.Atoi(h)
	minute, err2 := strconv.Atoi(m)
	second := 0
	if sec != "" {
		second, _ = strconv.Atoi(sec)
	}
	if err1 != nil || err2 != nil || hour > 23 || minute > 59 || second > 59 {
		return clockTime{}
	}
	return clockTime{hour: hour, minute: minute, second: second, ok: true}
}

func (n *Normalizer) parseDayMonthYear(s string) mo.Option[time.Time] {
	for _, m := range dayMonthYearRe.FindAllStringSubmatch(s, -1) {
		month, ok := months[m[2]]
		if !ok {
			continue
		}
		if t := n.build(m[3], int(month), m[1]); t.IsPresent() {
			return t
		}
	}
	return mo.None[time.Time]()
}

func (n *Normalizer) parseISODate(s string) mo.Option[time.Time] {
	for _, m := range isoDateRe.FindAllStringSubmatch(s, -1) {
		month, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if t := n.build(m[1], month, m[3]); t.IsPresent() {
			return t
		}
	}
	return mo.None[time.Time]()
}

// parseNumericDMY reads DD/MM/YYYY. A group above 12 can only be the day; when
// both groups are 12 or less the first one is taken as the day.
func (n *Normalizer) parseNumericDMY(s string) mo.Option[time.Time] {
	for _, m := range numericDMYRe.FindAllStringSubmatch(s, -1) {
		a, err1 := strconv.Atoi(m[1])
		b, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			continue
		}
		day, month := a, b
		if a <= 12 && b > 12 {
			day, month = b, a
		}
		if t := n.build(m[3], month, strconv.Itoa(day)); t.IsPresent() {
			return t
		}
	}
	return mo.None[time.Time]()
}

func (n *Normalizer) parseWeekdayLong(s string) mo.Option[time.Time] {
	m := weekdayLongRe.FindStringSubmatch(s)
	if m == nil {
		return mo.None[time.Time]()
	}
	day, monthName := m[1], m[2]
	if day == "" {
		day, monthName = m[4], m[3]
	}
	month, ok := months[monthName]
	if !ok {
		return mo.None[time.Time]()
	}
	return n.build(m[5], int(month), day)
}

func (n *Normalizer) parseMonthDayYear(s string) mo.Option[time.Time] {
	for _, m := range monthDayYearRe.FindAllStringSubmatch(s, -1) {
		month, ok := months[m[1]]
		if !ok {
			continue
		}
		if t := n.build(m[3], int(month), m[2]); t.IsPresent() {
			return t
		}
	}
	return mo.None[time.Time]()
}

// build validates the parts and returns midnight of that day in the reference zone.
func (n *Normalizer) build(yearStr string, month int, dayStr string) mo.Option[time.Time] {
	year, err := strconv.Atoi(yearStr)
	if err != nil || !n.yearOK(year) {
		return mo.None[time.Time]()
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return mo.None[time.Time]()
	}
	if month < 1 || month > 12 {
		return mo.None[time.Time]()
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, n.loc)
	// time.Date rolls 31 April over into May; reject instead.
	if t.Day() != day || int(t.Month()) != month {
		return mo.None[time.Time]()
	}
	return mo.Some(t)
}

func (n *Normalizer) yearOK(year int) bool {
	return year >= n.minYear && year <= n.maxYear
}

func (n *Normalizer) truncate(t time.Time) time.Time {
	t = t.In(n.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, n.loc)
}
