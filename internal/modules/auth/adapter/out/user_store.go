package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"watchless/internal/modules/auth/domain"
	authout "watchless/internal/modules/auth/port/out"
	apperrors "watchless/internal/platform/errors"
)

const userTimeLayout = time.RFC3339Nano

// SQLiteUserStore keeps profiles in the server's SQLite database.
type SQLiteUserStore struct {
	db *sql.DB
}

var (
	_ authout.UserStore = (*SQLiteUserStore)(nil)
	_ authout.UserStore = (*GormUserStore)(nil)
)

func NewSQLiteUserStore(ctx context.Context, db *sql.DB) (*SQLiteUserStore, error) {
	store := &SQLiteUserStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteUserStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  display_name TEXT NOT NULL,
  created_at TEXT NOT NULL,
  daily_goal INTEGER NOT NULL,
  notifications INTEGER NOT NULL,
  auto_export INTEGER NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// Upsert inserts a new profile or refreshes email and display name of an
// existing one. Preferences and creation time of existing profiles are kept.
func (s *SQLiteUserStore) Upsert(ctx context.Context, user domain.User) (domain.User, error) {
	const stmt = `
INSERT INTO users (id, email, display_name, created_at, daily_goal, notifications, auto_export)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  email=excluded.email,
  display_name=excluded.display_name;
`
	_, err := s.db.ExecContext(ctx, stmt,
		user.ID,
		user.Email,
		user.DisplayName,
		user.CreatedAt.UTC().Format(userTimeLayout),
		user.Preferences.DailyGoal,
		user.Preferences.Notifications,
		user.Preferences.AutoExport,
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return s.FindByID(ctx, user.ID)
}

func (s *SQLiteUserStore) FindByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT id, email, display_name, created_at, daily_goal, notifications, auto_export FROM users WHERE id = ?`
	var (
		user      domain.User
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&createdAt,
		&user.Preferences.DailyGoal,
		&user.Preferences.Notifications,
		&user.Preferences.AutoExport,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperrors.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	if user.CreatedAt, err = time.Parse(userTimeLayout, createdAt); err != nil {
		return domain.User{}, fmt.Errorf("parse user created_at: %w", err)
	}
	return user, nil
}

type userModel struct {
	ID            string `gorm:"primaryKey"`
	Email         string `gorm:"not null"`
	DisplayName   string `gorm:"not null"`
	CreatedAt     time.Time
	DailyGoal     int  `gorm:"not null"`
	Notifications bool `gorm:"not null"`
	AutoExport    bool `gorm:"not null"`
}

func (userModel) TableName() string { return "users" }

// GormUserStore keeps profiles in Postgres through gorm.
type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(ctx context.Context, db *gorm.DB) (*GormUserStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&userModel{}); err != nil {
		return nil, fmt.Errorf("migrate users: %w", err)
	}
	return &GormUserStore{db: db}, nil
}

func (s *GormUserStore) Upsert(ctx context.Context, user domain.User) (domain.User, error) {
	rec := userModel{
		ID:            user.ID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		CreatedAt:     user.CreatedAt.UTC(),
		DailyGoal:     user.Preferences.DailyGoal,
		Notifications: user.Preferences.Notifications,
		AutoExport:    user.Preferences.AutoExport,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name"}),
	}).Create(&rec).Error
	if err != nil {
		return domain.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return s.FindByID(ctx, user.ID)
}

func (s *GormUserStore) FindByID(ctx context.Context, id string) (domain.User, error) {
	var rec userModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, apperrors.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	return domain.User{
		ID:          rec.ID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		CreatedAt:   rec.CreatedAt.UTC(),
		Preferences: domain.Preferences{
			DailyGoal:     rec.DailyGoal,
			Notifications: rec.Notifications,
			AutoExport:    rec.AutoExport,
		},
	}, nil
}
