package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	apperrors "watchless/internal/platform/errors"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

var isoWeekPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// Period is a half-open UTC interval [From, To) labelled the way clients
// asked for it.
type Period struct {
	Label string
	From  time.Time
	To    time.Time
}

func ParseDay(raw string) (Period, error) {
	day, err := time.ParseInLocation(dayLayout, raw, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", apperrors.ErrInvalidInput, raw)
	}
	return Period{Label: day.Format(dayLayout), From: day, To: day.AddDate(0, 0, 1)}, nil
}

// ParseWeek accepts an ISO week (2026-W15) or any date inside the wanted
// week. Weeks start on Monday.
func ParseWeek(raw string) (Period, error) {
	if m := isoWeekPattern.FindStringSubmatch(raw); m != nil {
		year, _ := strconv.Atoi(m[1])
		week, _ := strconv.Atoi(m[2])
		monday := isoWeekMonday(year, week)
		if y, w := monday.ISOWeek(); week < 1 || y != year || w != week {
			return Period{}, fmt.Errorf("%w: %q is not a week of %d", apperrors.ErrInvalidInput, raw, year)
		}
		return weekPeriod(monday), nil
	}
	day, err := time.ParseInLocation(dayLayout, raw, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("%w: week %q must be YYYY-Www or YYYY-MM-DD", apperrors.ErrInvalidInput, raw)
	}
	return weekPeriod(StartOfWeek(day)), nil
}

func ParseMonth(raw string) (Period, error) {
	month, err := time.ParseInLocation(monthLayout, raw, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("%w: month %q must be YYYY-MM", apperrors.ErrInvalidInput, raw)
	}
	return Period{Label: month.Format(monthLayout), From: month, To: month.AddDate(0, 1, 0)}, nil
}

// Days is the number of calendar days the period covers.
func (p Period) Days() int {
	return int(p.To.Sub(p.From).Hours() / 24)
}

// StartOfWeek returns midnight of the Monday on or before t, in t's location.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

func isoWeekMonday(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	return StartOfWeek(jan4).AddDate(0, 0, (week-1)*7)
}

func weekPeriod(monday time.Time) Period {
	year, week := monday.ISOWeek()
	return Period{
		Label: fmt.Sprintf("%04d-W%02d", year, week),
		From:  monday,
		To:    monday.AddDate(0, 0, 7),
	}
}
