package domain

import (
	"strings"
	"time"
)

const DefaultDailyGoalMinutes = 120

type Preferences struct {
	DailyGoal     int  `json:"dailyGoal"`
	Notifications bool `json:"notifications"`
	AutoExport    bool `json:"autoExport"`
}

func DefaultPreferences() Preferences {
	return Preferences{DailyGoal: DefaultDailyGoalMinutes, Notifications: true, AutoExport: false}
}

type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	Preferences Preferences
}

// Identity is what a verified third-party ID token tells us about a person.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// NewUser builds the profile created at first login.
func NewUser(identity Identity, now time.Time) User {
	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = identity.Email
	}
	return User{
		ID:          identity.Subject,
		Email:       identity.Email,
		DisplayName: name,
		CreatedAt:   now,
		Preferences: DefaultPreferences(),
	}
}
