package temporal

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedTimestamp = errors.New("board timestamp does not contain the expected date and time tokens")
	ErrInvalidTimestamp   = errors.New("epoch timestamp out of plausible range")
	ErrMalformedDuration  = errors.New("duration is not in H:M form")
)

// The upstream runs on Italian local time everywhere it emits wall-clock
// values. Fall back to the process zone when tzdata is unavailable.
var location = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		return time.Local
	}

	return loc
}()

const boardLayout = "Mon Jan 02 2006 15:04:05"

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// Tokens may be separated by runs of space, comma or hyphen, except between
// the year and the time fields where only spaces occur (a hyphen there would
// collide with the offset suffix).
var boardPattern = regexp.MustCompile(
	`^([A-Za-z]{3})([ ,-]+)([A-Za-z]{3})([ ,-]+)(\d{1,2})([ ,-]+)(\d{4})( +)(\d{1,2}):(\d{2}):(\d{2})(.*)$`)

var offsetPattern = regexp.MustCompile(`([+-])(\d{1,4})`)

// ParseBoardTimestamp accepts the three textual layouts used by the board
// endpoints: the bare `Weekday Month Day Year HH:MM:SS` form, the same with a
// free-form GMT/UTC offset suffix, and a noisy-separator variant. Trailing
// garbage is tolerated everywhere except after the bare first layout.
func ParseBoardTimestamp(raw string) (time.Time, error) {
	match := boardPattern.FindStringSubmatch(raw)
	if match == nil {
		return time.Time{}, fmt.Errorf("%q: %w", raw, ErrMalformedTimestamp)
	}

	monthToken := match[3]
	month, ok := months[monthToken]
	if !ok {
		return time.Time{}, fmt.Errorf("%q: unknown month %q: %w", raw, monthToken, ErrMalformedTimestamp)
	}

	day, _ := strconv.Atoi(match[5])
	year, _ := strconv.Atoi(match[7])
	hour, _ := strconv.Atoi(match[9])
	minute, _ := strconv.Atoi(match[10])
	second, _ := strconv.Atoi(match[11])
	remainder := match[12]

	if day < 1 || day > 31 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("%q: %w", raw, ErrMalformedTimestamp)
	}

	zone := location
	offsetFound := false

	if offsetMatch := offsetPattern.FindStringSubmatch(remainder); offsetMatch != nil {
		offsetFound = true
		digits := offsetMatch[2]
		value, _ := strconv.Atoi(digits)

		var offsetSeconds int
		if len(digits) > 2 {
			offsetSeconds = (value/100)*3600 + (value%100)*60
		} else {
			offsetSeconds = value * 3600
		}
		if offsetMatch[1] == "-" {
			offsetSeconds = -offsetSeconds
		}

		zone = time.FixedZone("", offsetSeconds)
	}

	if remainder != "" && !offsetFound {
		canonicalSeparators := match[2] == " " && match[4] == " " && match[6] == " " && match[8] == " "
		if canonicalSeparators {
			// Bare first layout, so anything after the seconds is garbage
			return time.Time{}, fmt.Errorf("%q: trailing data after bare timestamp: %w", raw, ErrMalformedTimestamp)
		}
	}

	return time.Date(year, month, day, hour, minute, second, 0, zone), nil
}

// ParseEpochMillis validates and converts an epoch-millisecond field. The
// upstream occasionally emits zero, negative or otherwise absurd values where
// a timestamp failed to populate.
func ParseEpochMillis(ms int64) (time.Time, error) {
	if ms <= 0 {
		return time.Time{}, fmt.Errorf("%d: %w", ms, ErrInvalidTimestamp)
	}

	instant := time.UnixMilli(ms).In(location)
	if instant.Year() < 2000 || instant.Year() > 2100 {
		return time.Time{}, fmt.Errorf("%d: %w", ms, ErrInvalidTimestamp)
	}

	return instant, nil
}

// InstantFromMillis is the degrading form of ParseEpochMillis for optional
// fields: absent or implausible values become nil rather than an error.
func InstantFromMillis(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}

	instant, err := ParseEpochMillis(*ms)
	if err != nil {
		return nil
	}

	return &instant
}

// ParseDuration parses the upstream `H:M` span format, e.g. "1:6" is 66
// minutes. The low-confidence flag is set for spans nominally at or beyond 24
// hours, which the upstream is known to get wrong; callers must not derive
// per-leg figures from such values.
func ParseDuration(raw string) (minutes int, lowConfidence bool, err error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, false, fmt.Errorf("%q: %w", raw, ErrMalformedDuration)
	}

	hours, hourErr := strconv.Atoi(parts[0])
	mins, minErr := strconv.Atoi(parts[1])
	if hourErr != nil || minErr != nil || hours < 0 || mins < 0 || mins > 59 {
		return 0, false, fmt.Errorf("%q: %w", raw, ErrMalformedDuration)
	}

	minutes = hours*60 + mins

	return minutes, minutes >= 24*60, nil
}

// FormatSearchTimestamp produces the ISO form the journey search endpoint
// expects.
func FormatSearchTimestamp(instant time.Time) string {
	return instant.In(location).Format("2006-01-02T15:04:05")
}

// ParseSearchTimestamp reads the ISO form the journey search endpoint emits.
// The upstream carries no zone marker, so the wall time is anchored to the
// Italian network clock like every other timestamp.
func ParseSearchTimestamp(raw string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04:05", raw, location)
}

// FormatBoardTimestamp produces the textual layout the board endpoints expect
// for outbound queries.
func FormatBoardTimestamp(instant time.Time) string {
	return instant.In(location).Format(boardLayout)
}

// MidnightEpochMillis returns the epoch milliseconds of the instant's date at
// midnight, which is how the progress endpoint keys departure dates.
func MidnightEpochMillis(instant time.Time) int64 {
	local := instant.In(location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)

	return midnight.UnixMilli()
}

// DateOnly truncates an instant to its date, the canonical departure-date
// form used inside run keys.
func DateOnly(instant time.Time) time.Time {
	local := instant.In(location)

	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)
}
