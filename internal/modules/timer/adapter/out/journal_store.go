package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"watchless/internal/modules/timer/domain"
	timerout "watchless/internal/modules/timer/port/out"
	"watchless/internal/platform/markdown"
	"watchless/internal/platform/slug"
)

const journalTimeLayout = time.RFC3339

// MarkdownJournal writes one note per finished session under
// sessions/YYYY/MM/DD, in the start time's local calendar.
type MarkdownJournal struct {
	root     string
	location *time.Location
}

var _ timerout.Journal = (*MarkdownJournal)(nil)

func NewMarkdownJournal(root string, location *time.Location) *MarkdownJournal {
	if location == nil {
		location = time.Local
	}
	return &MarkdownJournal{root: root, location: location}
}

type journalMeta struct {
	SchemaVersion   int    `yaml:"schema_version"`
	ID              string `yaml:"id"`
	UserID          string `yaml:"user_id"`
	StartedAt       string `yaml:"started_at"`
	EndedAt         string `yaml:"ended_at"`
	DurationMinutes int    `yaml:"duration_minutes"`
	ShowName        string `yaml:"show_name,omitempty"`
	NamePrompt      string `yaml:"name_prompt"`
}

func (j *MarkdownJournal) Save(_ context.Context, session domain.ViewingSession, outcome domain.NameOutcome) (string, error) {
	if session.IsActive || session.EndTime == nil {
		return "", fmt.Errorf("journal only accepts finished sessions")
	}
	start := session.StartTime.In(j.location)
	dir := j.dayDir(start)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s-%s.md", start.Format("150405"), slug.Make(session.ShowName, "session"), idSuffix(session.ID))
	path := filepath.Join(dir, name)

	meta := journalMeta{
		SchemaVersion:   domain.SchemaVersion,
		ID:              session.ID,
		UserID:          session.UserID,
		StartedAt:       session.StartTime.Format(journalTimeLayout),
		EndedAt:         session.EndTime.Format(journalTimeLayout),
		DurationMinutes: session.Duration,
		ShowName:        session.ShowName,
		NamePrompt:      string(outcome),
	}
	title := session.ShowName
	if title == "" {
		title = "Untitled session"
	}
	body := fmt.Sprintf("# %s\n\n- Started: %s\n- Duration: %d minutes\n", title, start.Format("Mon Jan 2 15:04"), session.Duration)
	rendered, err := markdown.Encode(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	return path, nil
}

// List returns the sessions that started within [from, to), oldest first.
func (j *MarkdownJournal) List(ctx context.Context, from, to time.Time) ([]domain.ViewingSession, error) {
	sessions := []domain.ViewingSession{}
	if !from.Before(to) {
		return sessions, nil
	}
	first := from.In(j.location)
	day := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, j.location)
	for ; day.Before(to); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := j.dayDir(day)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read journal dir: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			session, err := readNote(filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, err
			}
			if session.StartTime.Before(from) || !session.StartTime.Before(to) {
				continue
			}
			sessions = append(sessions, session)
		}
	}
	sort.Slice(sessions, func(a, b int) bool { return sessions[a].StartTime.Before(sessions[b].StartTime) })
	return sessions, nil
}

func (j *MarkdownJournal) dayDir(t time.Time) string {
	return filepath.Join(j.root, "sessions", t.Format("2006"), t.Format("01"), t.Format("02"))
}

func readNote(path string) (domain.ViewingSession, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.ViewingSession{}, fmt.Errorf("read journal note: %w", err)
	}
	meta := journalMeta{}
	if _, err := markdown.Decode(string(raw), &meta); err != nil {
		return domain.ViewingSession{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	start, err := time.Parse(journalTimeLayout, meta.StartedAt)
	if err != nil {
		return domain.ViewingSession{}, fmt.Errorf("%s: started_at: %w", filepath.Base(path), err)
	}
	end, err := time.Parse(journalTimeLayout, meta.EndedAt)
	if err != nil {
		return domain.ViewingSession{}, fmt.Errorf("%s: ended_at: %w", filepath.Base(path), err)
	}
	return domain.ViewingSession{
		ID:        meta.ID,
		UserID:    meta.UserID,
		StartTime: start,
		EndTime:   &end,
		Duration:  meta.DurationMinutes,
		ShowName:  meta.ShowName,
		CreatedAt: start,
	}, nil
}

// idSuffix keeps file names unique when two sessions start in the same second.
func idSuffix(id string) string {
	if i := strings.LastIndex(id, "_"); i >= 0 && i < len(id)-1 {
		return slug.Make(id[i+1:], "x")
	}
	return slug.Make(id, "x")
}
