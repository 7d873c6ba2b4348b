package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const dateLayout = "02.01.2006"

var (
	datePattern  = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	rangePattern = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}\s*-\s*\d{2}\.\d{2}\.\d{4}$`)
)

// Period is a half-open time interval [From, To) with a human-readable label.
type Period struct {
	From  time.Time
	To    time.Time
	Label string
}

// ParsePeriod resolves a period token against now. Recognized forms:
//
//	day                      - start of today up to now
//	week                     - most recent Monday 00:00 up to now
//	month                    - first of the month 00:00 up to now
//	DD.MM.YYYY               - that full calendar day
//	DD.MM.YYYY - DD.MM.YYYY  - both endpoints' full days, inclusive
//
// Anything else fails with ErrBadPeriod.
func ParsePeriod(arg string, now time.Time) (Period, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))

	switch {
	case arg == "day":
		return Period{From: startOfDay(now), To: now, Label: "за сегодня"}, nil

	case arg == "week":
		// Monday is day zero of the week.
		back := (int(now.Weekday()) + 6) % 7
		from := startOfDay(now.AddDate(0, 0, -back))
		return Period{From: from, To: now, Label: "за неделю"}, nil

	case arg == "month":
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Period{From: from, To: now, Label: "за месяц"}, nil

	case datePattern.MatchString(arg):
		from, err := time.ParseInLocation(dateLayout, arg, now.Location())
		if err != nil {
			return Period{}, ErrBadPeriod
		}
		return Period{From: from, To: from.AddDate(0, 0, 1), Label: "за " + arg}, nil

	case rangePattern.MatchString(arg):
		first, second, _ := strings.Cut(arg, "-")
		first, second = strings.TrimSpace(first), strings.TrimSpace(second)
		from, err := time.ParseInLocation(dateLayout, first, now.Location())
		if err != nil {
			return Period{}, ErrBadPeriod
		}
		to, err := time.ParseInLocation(dateLayout, second, now.Location())
		if err != nil {
			return Period{}, ErrBadPeriod
		}
		label := fmt.Sprintf("c %s по %s", first, second)
		return Period{From: from, To: to.AddDate(0, 0, 1), Label: label}, nil
	}

	return Period{}, ErrBadPeriod
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
