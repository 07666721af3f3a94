package dto

import (
	"time"

	"watchless/internal/modules/auth/domain"
)

type LoginInput struct {
	Credential string
}

type PreferencesOutput struct {
	DailyGoal     int  `json:"dailyGoal"`
	Notifications bool `json:"notifications"`
	AutoExport    bool `json:"autoExport"`
}

type UserOutput struct {
	ID          string            `json:"id"`
	Email       string            `json:"email"`
	DisplayName string            `json:"displayName"`
	CreatedAt   time.Time         `json:"createdAt"`
	Preferences PreferencesOutput `json:"preferences"`
}

type LoginOutput struct {
	User  UserOutput `json:"user"`
	Token string     `json:"token"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    string
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func FromUser(u domain.User) UserOutput {
	return UserOutput{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		Preferences: PreferencesOutput(u.Preferences),
	}
}

func (u UserOutput) ToDomain() domain.User {
	return domain.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		Preferences: domain.Preferences(u.Preferences),
	}
}
