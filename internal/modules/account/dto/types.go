package dto

import (
	"time"

	authdomain "watchless/internal/modules/auth/domain"
)

type Profile struct {
	ID            string
	Email         string
	DisplayName   string
	CreatedAt     time.Time
	DailyGoal     int
	Notifications bool
	AutoExport    bool
}

type SettingOutput struct {
	Key   string
	Value any
	Found bool
}

type SetSettingInput struct {
	Key string
	// Raw is parsed as JSON when possible and kept as a string otherwise.
	Raw string
}

func FromUser(u authdomain.User) Profile {
	return Profile{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		CreatedAt:     u.CreatedAt,
		DailyGoal:     u.Preferences.DailyGoal,
		Notifications: u.Preferences.Notifications,
		AutoExport:    u.Preferences.AutoExport,
	}
}
