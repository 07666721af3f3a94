package domain

import (
	"math"
	"sort"

	timerdomain "watchless/internal/modules/timer/domain"
)

const TopShowsLimit = 5

type ShowTotal struct {
	Name      string
	TotalTime int
}

// Totals are the plain aggregates shared by every report.
type Totals struct {
	TotalMinutes         int
	SessionsCount        int
	AverageSessionLength float64
	MostWatchedShows     []ShowTotal
}

type DailyReport struct {
	UserID string
	Date   string
	Totals
}

type WeeklyReport struct {
	UserID         string
	Week           string
	DailyBreakdown [7]int
	Totals
}

type MonthlyReport struct {
	UserID       string
	Month        string
	DailyAverage float64
	Totals
}

// Summarize aggregates finished sessions. Active sessions are ignored.
func Summarize(sessions []timerdomain.ViewingSession) Totals {
	var totals Totals
	byShow := map[string]int{}
	for _, s := range sessions {
		if s.IsActive {
			continue
		}
		totals.TotalMinutes += s.Duration
		totals.SessionsCount++
		if s.ShowName != "" {
			byShow[s.ShowName] += s.Duration
		}
	}
	if totals.SessionsCount > 0 {
		totals.AverageSessionLength = roundTenth(float64(totals.TotalMinutes) / float64(totals.SessionsCount))
	}
	totals.MostWatchedShows = topShows(byShow, TopShowsLimit)
	return totals
}

func Daily(userID string, period Period, sessions []timerdomain.ViewingSession) DailyReport {
	return DailyReport{UserID: userID, Date: period.Label, Totals: Summarize(sessions)}
}

// Weekly buckets minutes by weekday, Monday at index 0.
func Weekly(userID string, period Period, sessions []timerdomain.ViewingSession) WeeklyReport {
	report := WeeklyReport{UserID: userID, Week: period.Label, Totals: Summarize(sessions)}
	for _, s := range sessions {
		if s.IsActive {
			continue
		}
		idx := int(s.StartTime.UTC().Sub(period.From).Hours() / 24)
		if idx >= 0 && idx < len(report.DailyBreakdown) {
			report.DailyBreakdown[idx] += s.Duration
		}
	}
	return report
}

func Monthly(userID string, period Period, sessions []timerdomain.ViewingSession) MonthlyReport {
	report := MonthlyReport{UserID: userID, Month: period.Label, Totals: Summarize(sessions)}
	if days := period.Days(); days > 0 {
		report.DailyAverage = roundTenth(float64(report.TotalMinutes) / float64(days))
	}
	return report
}

func topShows(byShow map[string]int, limit int) []ShowTotal {
	shows := make([]ShowTotal, 0, len(byShow))
	for name, total := range byShow {
		shows = append(shows, ShowTotal{Name: name, TotalTime: total})
	}
	sort.Slice(shows, func(i, j int) bool {
		if shows[i].TotalTime != shows[j].TotalTime {
			return shows[i].TotalTime > shows[j].TotalTime
		}
		return shows[i].Name < shows[j].Name
	})
	if len(shows) > limit {
		shows = shows[:limit]
	}
	return shows
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
