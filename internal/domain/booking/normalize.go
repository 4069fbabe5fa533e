package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DateLayout is the canonical date form stored and compared everywhere.
const DateLayout = "2006-01-02"

// DateOrder decides how an ambiguous A-B-Y date is read when both A and B are <= 12.
type DateOrder int

const (
	DayFirst DateOrder = iota
	MonthFirst
)

func (o DateOrder) String() string {
	if o == MonthFirst {
		return "MDY"
	}
	return "DMY"
}

// ParseDateOrder accepts "DMY" or "MDY" (case-insensitive). Empty means DMY.
func ParseDateOrder(s string) (DateOrder, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "DMY":
		return DayFirst, nil
	case "MDY":
		return MonthFirst, nil
	default:
		return DayFirst, fmt.Errorf("booking: unknown date order %q", s)
	}
}

var (
	isoDatePattern    = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	anySepDatePattern = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})$`)

	suffixTailPattern = regexp.MustCompile(`(?i)(am|pm)$`)
	suffixedPattern   = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{1,2}))?\s*(am|pm)$`)
	clock24Pattern    = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})$`)
	hourOnlyPattern   = regexp.MustCompile(`^(\d{1,2})$`)
	canonicalPattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2}) (AM|PM)$`)
)

// Normalizer turns free-form date and time text into canonical strings.
type Normalizer struct {
	order DateOrder
	log   *zap.Logger
}

func NewNormalizer(order DateOrder, log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{order: order, log: log}
}

var defaultNormalizer = NewNormalizer(DayFirst, nil)

// ParseDate normalizes with the day-first default and no logging.
func ParseDate(raw string) (string, bool) {
	return defaultNormalizer.ParseDate(raw)
}

// ParseTime normalizes with no logging.
func ParseTime(raw string) (string, bool) {
	return defaultNormalizer.ParseTime(raw)
}

// ParseDate returns the canonical YYYY-MM-DD form of raw. Day/month values are
// pushed through a calendar date, so 2024-02-30 becomes 2024-03-01.
func (n *Normalizer) ParseDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return calendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3])), true
	}

	m := anySepDatePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	a, b, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
	if year < 100 {
		year += 2000
	}

	var day, month int
	switch {
	case a > 12:
		day, month = a, b
	case b > 12:
		month, day = a, b
	case n.order == MonthFirst:
		month, day = a, b
	default:
		day, month = a, b
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	return calendarDate(year, month, day), true
}

// ParseTime returns the canonical "H:MM AM|PM" label for raw. Strings that do
// not look like a time at all are returned unchanged and logged.
func (n *Normalizer) ParseTime(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if suffixTailPattern.MatchString(s) {
		m := suffixedPattern.FindStringSubmatch(s)
		if m == nil {
			return "", false
		}
		hour, minute := atoi(m[1]), 0
		if m[2] != "" {
			minute = atoi(m[2])
		}
		if hour > 23 || minute > 59 {
			return "", false
		}
		hour12 := hour % 12
		if hour12 == 0 {
			hour12 = 12
		}
		return fmt.Sprintf("%d:%02d %s", hour12, minute, strings.ToUpper(m[3])), true
	}

	if m := clock24Pattern.FindStringSubmatch(s); m != nil {
		hour, minute := atoi(m[1]), atoi(m[2])
		if hour > 23 || minute > 59 {
			return "", false
		}
		return Label(hour*60 + minute), true
	}

	if m := hourOnlyPattern.FindStringSubmatch(s); m != nil {
		hour := atoi(m[1])
		if hour > 23 {
			return "", false
		}
		return Label(hour * 60), true
	}

	n.log.Warn("time not recognised, keeping raw value", zap.String("raw", s))
	return s, true
}

// Label formats minutes since midnight as a 12-hour slot label.
func Label(minutes int) string {
	hour, minute := minutes/60, minutes%60
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour12, minute, period)
}

// ClockMinutes is the inverse of Label. It only accepts canonical labels.
func ClockMinutes(label string) (int, bool) {
	m := canonicalPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	hour, minute := atoi(m[1]), atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, false
	}
	hour %= 12
	if m[3] == "PM" {
		hour += 12
	}
	return hour*60 + minute, true
}

func calendarDate(year, month, day int) string {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

// atoi is only called on regexp digit groups.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
