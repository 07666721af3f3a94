package dto

import "watchless/internal/modules/analytics/domain"

type ReportInput struct {
	UserID string
	Period string
}

type ShowTotal struct {
	Name      string `json:"name"`
	TotalTime int    `json:"totalTime"`
}

type DailyReport struct {
	UserID               string      `json:"userId"`
	Date                 string      `json:"date"`
	DailyTotal           int         `json:"dailyTotal"`
	SessionsCount        int         `json:"sessionsCount"`
	AverageSessionLength float64     `json:"averageSessionLength"`
	MostWatchedShows     []ShowTotal `json:"mostWatchedShows"`
}

type WeeklyReport struct {
	UserID               string      `json:"userId"`
	Week                 string      `json:"week"`
	WeeklyTotal          int         `json:"weeklyTotal"`
	DailyBreakdown       []int       `json:"dailyBreakdown"`
	SessionsCount        int         `json:"sessionsCount"`
	AverageSessionLength float64     `json:"averageSessionLength"`
	MostWatchedShows     []ShowTotal `json:"mostWatchedShows"`
}

type MonthlyReport struct {
	UserID               string      `json:"userId"`
	Month                string      `json:"month"`
	MonthlyTotal         int         `json:"monthlyTotal"`
	DailyAverage         float64     `json:"dailyAverage"`
	SessionsCount        int         `json:"sessionsCount"`
	AverageSessionLength float64     `json:"averageSessionLength"`
	MostWatchedShows     []ShowTotal `json:"mostWatchedShows"`
}

func FromDaily(r domain.DailyReport) DailyReport {
	return DailyReport{
		UserID:               r.UserID,
		Date:                 r.Date,
		DailyTotal:           r.TotalMinutes,
		SessionsCount:        r.SessionsCount,
		AverageSessionLength: r.AverageSessionLength,
		MostWatchedShows:     fromShows(r.MostWatchedShows),
	}
}

func FromWeekly(r domain.WeeklyReport) WeeklyReport {
	return WeeklyReport{
		UserID:               r.UserID,
		Week:                 r.Week,
		WeeklyTotal:          r.TotalMinutes,
		DailyBreakdown:       append([]int(nil), r.DailyBreakdown[:]...),
		SessionsCount:        r.SessionsCount,
		AverageSessionLength: r.AverageSessionLength,
		MostWatchedShows:     fromShows(r.MostWatchedShows),
	}
}

func FromMonthly(r domain.MonthlyReport) MonthlyReport {
	return MonthlyReport{
		UserID:               r.UserID,
		Month:                r.Month,
		MonthlyTotal:         r.TotalMinutes,
		DailyAverage:         r.DailyAverage,
		SessionsCount:        r.SessionsCount,
		AverageSessionLength: r.AverageSessionLength,
		MostWatchedShows:     fromShows(r.MostWatchedShows),
	}
}

func fromShows(shows []domain.ShowTotal) []ShowTotal {
	out := make([]ShowTotal, 0, len(shows))
	for _, s := range shows {
		out = append(out, ShowTotal{Name: s.Name, TotalTime: s.TotalTime})
	}
	return out
}
