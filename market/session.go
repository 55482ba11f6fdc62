package market

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const clockLayout = "15:04"

// Session describes the fixed intraday minute grid of one exchange.
// Open and Close are both inclusive.
type Session struct {
	Location *time.Location
	Open     time.Duration // offset from local midnight
	Close    time.Duration
}

// NYSE is the regular US equity session, 09:30 through 15:59 New York time.
func NYSE() Session {
	s, err := NewSession("America/New_York", "09:30", "15:59")
	if err != nil {
		panic(err)
	}
	return s
}

// NewSession builds a session from a tz database name and "HH:MM" clock times.
func NewSession(tz, open, close string) (Session, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Session{}, fmt.Errorf("session timezone %q: %w", tz, err)
	}
	o, err := parseClock(open)
	if err != nil {
		return Session{}, fmt.Errorf("session open: %w", err)
	}
	c, err := parseClock(close)
	if err != nil {
		return Session{}, fmt.Errorf("session close: %w", err)
	}
	if c < o {
		return Session{}, fmt.Errorf("session close %s is before open %s", close, open)
	}
	return Session{Location: loc, Open: o, Close: c}, nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("bad clock time %q (want HH:MM)", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Minutes is the number of grid rows in one session.
func (s Session) Minutes() int {
	return int((s.Close-s.Open)/time.Minute) + 1
}

// Grid returns the first grid minute of the session on the given local date.
// The wall clock is resolved in the session location so DST days stay aligned.
func (s Session) Grid(date Date) time.Time {
	h := int(s.Open / time.Hour)
	m := int((s.Open % time.Hour) / time.Minute)
	return time.Date(date.Year, date.Month, date.Day, h, m, 0, 0, s.Location)
}

// Index returns the grid row of t within its local day, or false if t
// falls outside the session.
func (s Session) Index(t time.Time) (int, bool) {
	lt := t.In(s.Location)
	start := s.Grid(DateOf(lt, s.Location))
	d := lt.Sub(start)
	if d < 0 || d%time.Minute != 0 {
		return 0, false
	}
	idx := int(d / time.Minute)
	if idx >= s.Minutes() {
		return 0, false
	}
	return idx, true
}

// Date is a calendar date in a session's local time.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the local calendar date of t in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}
