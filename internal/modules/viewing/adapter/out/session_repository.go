package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	timerdomain "watchless/internal/modules/timer/domain"
	viewingout "watchless/internal/modules/viewing/port/out"
	apperrors "watchless/internal/platform/errors"
)

// SQLiteSessionRepository stores sessions in the server's SQLite database.
// Instants are kept as unix milliseconds so range scans compare numerically.
type SQLiteSessionRepository struct {
	db *sql.DB
}

var (
	_ viewingout.SessionRepository = (*SQLiteSessionRepository)(nil)
	_ viewingout.SessionRepository = (*GormSessionRepository)(nil)
)

func NewSQLiteSessionRepository(ctx context.Context, db *sql.DB) (*SQLiteSessionRepository, error) {
	repo := &SQLiteSessionRepository{db: db}
	if err := repo.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteSessionRepository) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS viewing_sessions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  start_ms INTEGER NOT NULL,
  end_ms INTEGER,
  duration INTEGER NOT NULL,
  show_name TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL,
  created_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS viewing_sessions_user_start ON viewing_sessions(user_id, start_ms);
CREATE UNIQUE INDEX IF NOT EXISTS viewing_sessions_one_active ON viewing_sessions(user_id) WHERE is_active = 1;
`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create viewing_sessions table: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepository) Create(ctx context.Context, s timerdomain.ViewingSession) error {
	const stmt = `
INSERT INTO viewing_sessions (id, user_id, start_ms, end_ms, duration, show_name, is_active, created_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := r.db.ExecContext(ctx, stmt, s.ID, s.UserID, s.StartTime.UnixMilli(), nullableMillis(s.EndTime), s.Duration, s.ShowName, s.IsActive, s.CreatedAt.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperrors.ErrActiveSessionExists
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SQLiteSessionRepository) Update(ctx context.Context, s timerdomain.ViewingSession) error {
	const stmt = `
UPDATE viewing_sessions SET end_ms = ?, duration = ?, show_name = ?, is_active = ?
WHERE id = ? AND user_id = ?;
`
	res, err := r.db.ExecContext(ctx, stmt, nullableMillis(s.EndTime), s.Duration, s.ShowName, s.IsActive, s.ID, s.UserID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

const sessionColumns = `id, user_id, start_ms, end_ms, duration, show_name, is_active, created_ms`

func (r *SQLiteSessionRepository) FindByID(ctx context.Context, userID, id string) (timerdomain.ViewingSession, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM viewing_sessions WHERE id = ? AND user_id = ?`, id, userID)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return timerdomain.ViewingSession{}, apperrors.ErrNotFound
	}
	return session, err
}

func (r *SQLiteSessionRepository) FindActive(ctx context.Context, userID string) (timerdomain.ViewingSession, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM viewing_sessions WHERE user_id = ? AND is_active = 1`, userID)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return timerdomain.ViewingSession{}, apperrors.ErrNoActiveSession
	}
	return session, err
}

func (r *SQLiteSessionRepository) ListFinished(ctx context.Context, userID string, from, to time.Time) ([]timerdomain.ViewingSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM viewing_sessions
WHERE user_id = ? AND is_active = 0 AND start_ms >= ? AND start_ms < ?
ORDER BY start_ms`,
		userID, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	sessions := []timerdomain.ViewingSession{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (timerdomain.ViewingSession, error) {
	var (
		s         timerdomain.ViewingSession
		startMS   int64
		endMS     sql.NullInt64
		createdMS int64
	)
	if err := row.Scan(&s.ID, &s.UserID, &startMS, &endMS, &s.Duration, &s.ShowName, &s.IsActive, &createdMS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timerdomain.ViewingSession{}, err
		}
		return timerdomain.ViewingSession{}, fmt.Errorf("scan session: %w", err)
	}
	s.StartTime = time.UnixMilli(startMS).UTC()
	s.CreatedAt = time.UnixMilli(createdMS).UTC()
	if endMS.Valid {
		end := time.UnixMilli(endMS.Int64).UTC()
		s.EndTime = &end
	}
	return s, nil
}

func nullableMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

type sessionModel struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;index:viewing_sessions_user_start,priority:1"`
	StartTime time.Time `gorm:"not null;index:viewing_sessions_user_start,priority:2"`
	EndTime   *time.Time
	Duration  int    `gorm:"not null"`
	ShowName  string `gorm:"not null;default:''"`
	IsActive  bool   `gorm:"not null"`
	CreatedAt time.Time
}

func (sessionModel) TableName() string { return "viewing_sessions" }

// GormSessionRepository stores sessions in Postgres through gorm.
type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(ctx context.Context, db *gorm.DB) (*GormSessionRepository, error) {
	if err := db.WithContext(ctx).AutoMigrate(&sessionModel{}); err != nil {
		return nil, fmt.Errorf("migrate viewing_sessions: %w", err)
	}
	const activeIndex = `CREATE UNIQUE INDEX IF NOT EXISTS viewing_sessions_one_active ON viewing_sessions(user_id) WHERE is_active`
	if err := db.WithContext(ctx).Exec(activeIndex).Error; err != nil {
		return nil, fmt.Errorf("create active session index: %w", err)
	}
	return &GormSessionRepository{db: db}, nil
}

func (r *GormSessionRepository) Create(ctx context.Context, s timerdomain.ViewingSession) error {
	rec := toSessionModel(s)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrActiveSessionExists
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *GormSessionRepository) Update(ctx context.Context, s timerdomain.ViewingSession) error {
	res := r.db.WithContext(ctx).Model(&sessionModel{}).
		Where("id = ? AND user_id = ?", s.ID, s.UserID).
		Updates(map[string]any{
			"end_time":  s.EndTime,
			"duration":  s.Duration,
			"show_name": s.ShowName,
			"is_active": s.IsActive,
		})
	if res.Error != nil {
		return fmt.Errorf("update session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *GormSessionRepository) FindByID(ctx context.Context, userID, id string) (timerdomain.ViewingSession, error) {
	var rec sessionModel
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return timerdomain.ViewingSession{}, apperrors.ErrNotFound
	}
	if err != nil {
		return timerdomain.ViewingSession{}, fmt.Errorf("find session: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *GormSessionRepository) FindActive(ctx context.Context, userID string) (timerdomain.ViewingSession, error) {
	var rec sessionModel
	err := r.db.WithContext(ctx).Where("user_id = ? AND is_active", userID).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return timerdomain.ViewingSession{}, apperrors.ErrNoActiveSession
	}
	if err != nil {
		return timerdomain.ViewingSession{}, fmt.Errorf("find active session: %w", err)
	}
	return rec.toDomain(), nil
}

func (r *GormSessionRepository) ListFinished(ctx context.Context, userID string, from, to time.Time) ([]timerdomain.ViewingSession, error) {
	var recs []sessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND NOT is_active AND start_time >= ? AND start_time < ?", userID, from.UTC(), to.UTC()).
		Order("start_time").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sessions := make([]timerdomain.ViewingSession, 0, len(recs))
	for _, rec := range recs {
		sessions = append(sessions, rec.toDomain())
	}
	return sessions, nil
}

func toSessionModel(s timerdomain.ViewingSession) sessionModel {
	return sessionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		StartTime: s.StartTime.UTC(),
		EndTime:   s.EndTime,
		Duration:  s.Duration,
		ShowName:  s.ShowName,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt.UTC(),
	}
}

func (m sessionModel) toDomain() timerdomain.ViewingSession {
	s := timerdomain.ViewingSession{
		ID:        m.ID,
		UserID:    m.UserID,
		StartTime: m.StartTime.UTC(),
		Duration:  m.Duration,
		ShowName:  m.ShowName,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.EndTime != nil {
		end := m.EndTime.UTC()
		s.EndTime = &end
	}
	return s
}
