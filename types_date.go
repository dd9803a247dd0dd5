package folio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

// Date represents a date with day-level granularity. Snapshots and
// transactions are dated, not timestamped: brokerage exports carry at
// best a trade date.
type Date struct {
	y int        // year
	m time.Month // month
	d int        // day
}

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// String formats the date in ISO-8601.
func (d Date) String() string { return d.time().Format(DateFormat) }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool {
	return d.y == 0 && d.m == 0 && d.d == 0
}

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Unix returns the epoch seconds of the day at midnight UTC.
func (d Date) Unix() int64 { return d.time().Unix() }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Equal reports whether d and x are the same day.
func (d Date) Equal(x Date) bool { return d == x }

// Compare returns -1, 0 or +1 ordering d against x. Suited for slices.SortFunc.
func (d Date) Compare(x Date) int {
	switch {
	case d.Before(x):
		return -1
	case d.After(x):
		return 1
	default:
		return 0
	}
}

// Today returns the current date.
func Today() Date { return NewDate(time.Now().Date()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

// DaysBetween returns the number of days from d to x (positive when x is later).
func DaysBetween(d, x Date) int {
	return int(x.time().Sub(d.time()) / (24 * time.Hour))
}

// Midpoint returns the day halfway between d and x.
func Midpoint(d, x Date) Date {
	return d.Add(DaysBetween(d, x) / 2)
}

// DateOfEpoch converts epoch seconds (or milliseconds, detected by
// magnitude) to the UTC day they fall on. Brokerage JSON exports use both.
func DateOfEpoch(epoch int64) Date {
	// Anything beyond year ~33000 in seconds is really milliseconds.
	if epoch > 1e12 || epoch < -1e12 {
		epoch /= 1000
	}
	return NewDate(time.Unix(epoch, 0).UTC().Date())
}

// ParseDate parses a Date from a string. It is lenient and accepts ISO
// dates like "2025-7-1", RFC3339 timestamps, and epoch seconds or
// milliseconds, which covers the date shapes seen in brokerage exports.
func ParseDate(str string) (Date, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return Date{}, fmt.Errorf("empty date")
	}

	if epoch, err := strconv.ParseInt(str, 10, 64); err == nil {
		return DateOfEpoch(epoch), nil
	}

	if on, err := time.Parse(readDateFormat, str); err == nil {
		return NewDate(on.Date()), nil
	}
	if on, err := time.Parse(time.RFC3339, str); err == nil {
		return NewDate(on.Date()), nil
	}
	if on, err := time.Parse("1/2/2006", str); err == nil {
		return NewDate(on.Date()), nil
	}
	return Date{}, fmt.Errorf("invalid date %q want format %q", str, readDateFormat)
}

// MustParseDate is like ParseDate but panics on error. For tests and constants.
func MustParseDate(str string) Date {
	d, err := ParseDate(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON implements the json specific way to unmarshal a date from
// a json string or epoch number.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var epoch int64
	if err := json.Unmarshal(bytes, &epoch); err == nil {
		*d = DateOfEpoch(epoch)
		return nil
	}
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	on, err := ParseDate(str)
	if err != nil {
		return fmt.Errorf("invalid date in data file: %w", err)
	}
	*d = on
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	str := d.String()
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshal/unmarshal type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)
