package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/goldencrust/interview-agent/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Used for local
// development and single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS candidates (
	id                    TEXT PRIMARY KEY,
	full_name             TEXT NOT NULL,
	phone_number          TEXT NOT NULL,
	email                 TEXT,
	target_role           TEXT NOT NULL,
	years_of_experience   INTEGER NOT NULL DEFAULT 0,
	expected_salary       INTEGER NOT NULL DEFAULT 0,
	has_field_experience  INTEGER NOT NULL DEFAULT 0,
	proximity_to_branch   TEXT,
	can_start_immediately TEXT,
	academic_status       TEXT,
	registration_form     TEXT,
	created_at            DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS interviews (
	id               TEXT PRIMARY KEY,
	candidate_id     TEXT NOT NULL REFERENCES candidates(id),
	status           TEXT NOT NULL DEFAULT 'in_progress',
	transcript       TEXT,
	inconsistencies  TEXT,
	started_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at     DATETIME,
	duration_seconds REAL,
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS credibility_reports (
	interview_id TEXT PRIMARY KEY REFERENCES interviews(id),
	score        INTEGER NOT NULL,
	level        TEXT NOT NULL,
	report       TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_interviews_candidate_id ON interviews(candidate_id);
CREATE INDEX IF NOT EXISTS idx_interviews_status ON interviews(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return eris.Wrap(s.db.Close(), "sqlite: close")
}

func (s *SQLiteStore) GetCandidate(ctx context.Context, candidateID string) (*model.Candidate, error) {
	var c model.Candidate
	var email, proximity, canStart, academic sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, full_name, phone_number, email, target_role, years_of_experience, expected_salary, has_field_experience, proximity_to_branch, can_start_immediately, academic_status, created_at FROM candidates WHERE id = ?`,
		candidateID,
	).Scan(
		&c.ID, &c.FullName, &c.PhoneNumber, &email, &c.TargetRole,
		&c.YearsOfExperience, &c.ExpectedSalary, &c.HasFieldExperience,
		&proximity, &canStart, &academic, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: candidate %s", candidateID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get candidate %s", candidateID)
	}
	c.Email = email.String
	c.ProximityToBranch = proximity.String
	c.CanStartImmediately = canStart.String
	c.AcademicStatus = academic.String
	return &c, nil
}

func (s *SQLiteStore) GetRegistrationForm(ctx context.Context, candidateID string) (*model.RegistrationForm, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT registration_form FROM candidates WHERE id = ?`,
		candidateID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: candidate %s", candidateID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get registration form %s", candidateID)
	}

	form := &model.RegistrationForm{}
	if raw.Valid && raw.String != "" {
		if err := json.Unmarshal([]byte(raw.String), form); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal registration form")
		}
	}
	return form, nil
}

func (s *SQLiteStore) CreateInterview(ctx context.Context, interviewID, candidateID string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interviews (id, candidate_id, status, started_at) VALUES (?, ?, ?, ?)`,
		interviewID, candidateID, string(model.InterviewStatusInProgress), startedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: create interview %s", interviewID)
}

func (s *SQLiteStore) AppendTranscript(ctx context.Context, interviewID string, turns []model.Turn, inconsistencies []model.Inconsistency) error {
	turnsJSON, err := json.Marshal(turns)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal transcript")
	}
	incJSON, err := json.Marshal(inconsistencies)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal inconsistencies")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE interviews SET transcript = ?, inconsistencies = ?, updated_at = datetime('now') WHERE id = ?`,
		string(turnsJSON), string(incJSON), interviewID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: append transcript %s", interviewID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: interview %s", interviewID)
	}
	return nil
}

func (s *SQLiteStore) MarkCompleted(ctx context.Context, interviewID string, duration time.Duration) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE interviews SET status = ?, completed_at = ?, duration_seconds = ?, updated_at = datetime('now') WHERE id = ?`,
		string(model.InterviewStatusCompleted), time.Now().UTC(), duration.Seconds(), interviewID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark completed %s", interviewID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: interview %s", interviewID)
	}
	return nil
}

func (s *SQLiteStore) GetInterview(ctx context.Context, interviewID string) (*model.Interview, error) {
	var iv model.Interview
	var transcript, inconsistencies sql.NullString
	var completedAt sql.NullTime
	var duration sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, candidate_id, status, transcript, inconsistencies, started_at, completed_at, duration_seconds FROM interviews WHERE id = ?`,
		interviewID,
	).Scan(&iv.ID, &iv.CandidateID, &iv.Status, &transcript, &inconsistencies, &iv.StartedAt, &completedAt, &duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: interview %s", interviewID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get interview %s", interviewID)
	}

	if completedAt.Valid {
		t := completedAt.Time
		iv.CompletedAt = &t
	}
	iv.DurationSeconds = duration.Float64
	if transcript.Valid && transcript.String != "" {
		if err := json.Unmarshal([]byte(transcript.String), &iv.Transcript); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal transcript")
		}
	}
	if inconsistencies.Valid && inconsistencies.String != "" {
		if err := json.Unmarshal([]byte(inconsistencies.String), &iv.Inconsistencies); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal inconsistencies")
		}
	}
	return &iv, nil
}

func (s *SQLiteStore) ListInterviews(ctx context.Context, filter model.InterviewFilter) ([]model.Interview, error) {
	query := `SELECT i.id, i.candidate_id, i.status, i.started_at, i.completed_at, COALESCE(i.duration_seconds, 0) FROM interviews i`
	var args []any
	where := ""

	appendCond := func(cond string, val any) {
		args = append(args, val)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += cond
	}

	if filter.Unscored {
		query += ` LEFT JOIN credibility_reports r ON r.interview_id = i.id`
		where = " WHERE r.interview_id IS NULL"
	}
	if filter.Status != "" {
		appendCond("i.status = ?", string(filter.Status))
	}
	if filter.CandidateID != "" {
		appendCond("i.candidate_id = ?", filter.CandidateID)
	}

	query += where + " ORDER BY i.started_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + strconv.Itoa(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + strconv.Itoa(filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list interviews")
	}
	defer rows.Close()

	var out []model.Interview
	for rows.Next() {
		var iv model.Interview
		var completedAt sql.NullTime
		if err := rows.Scan(&iv.ID, &iv.CandidateID, &iv.Status, &iv.StartedAt, &completedAt, &iv.DurationSeconds); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan interview")
		}
		if completedAt.Valid {
			t := completedAt.Time
			iv.CompletedAt = &t
		}
		out = append(out, iv)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list interviews rows")
}

func (s *SQLiteStore) SaveCredibilityReport(ctx context.Context, report *model.CredibilityReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal credibility report")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO credibility_reports (interview_id, score, level, report, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (interview_id) DO UPDATE SET score = excluded.score, level = excluded.level, report = excluded.report, created_at = excluded.created_at`,
		report.InterviewID, report.Score, report.Level, string(reportJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save credibility report %s", report.InterviewID)
}

func (s *SQLiteStore) GetCredibilityReport(ctx context.Context, interviewID string) (*model.CredibilityReport, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT report FROM credibility_reports WHERE interview_id = ?`,
		interviewID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: credibility report %s", interviewID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get credibility report %s", interviewID)
	}

	var report model.CredibilityReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal credibility report")
	}
	return &report, nil
}

func (s *SQLiteStore) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{InterviewsByRole: map[string]int{}}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM candidates),
			(SELECT count(*) FROM interviews),
			(SELECT count(*) FROM interviews WHERE status = 'completed'),
			COALESCE((SELECT avg(duration_seconds) FROM interviews WHERE duration_seconds > 0), 0),
			COALESCE((SELECT avg(score) FROM credibility_reports), 0)
	`).Scan(
		&stats.TotalCandidates, &stats.TotalInterviews, &stats.CompletedInterviews,
		&stats.AvgDurationSeconds, &stats.AvgCredibilityScore,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: dashboard stats")
	}

	// SQLite stores inconsistencies as a JSON text column; count in Go.
	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE(inconsistencies, '') FROM interviews WHERE inconsistencies IS NOT NULL`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: dashboard hallucinations")
	}
	defer rows.Close()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan inconsistencies")
		}
		if raw == "" {
			continue
		}
		var recs []model.Inconsistency
		if err := json.Unmarshal([]byte(raw), &recs); err != nil {
			continue
		}
		for _, r := range recs {
			if r.Type == model.InconsistencyLLMHallucination {
				stats.HallucinationsCaught++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: dashboard hallucinations rows")
	}

	roleRows, err := s.db.QueryContext(ctx, `
		SELECT c.target_role, count(*) FROM interviews i
		JOIN candidates c ON c.id = i.candidate_id
		GROUP BY c.target_role
	`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: dashboard stats by role")
	}
	defer roleRows.Close()
	for roleRows.Next() {
		var role string
		var n int
		if err := roleRows.Scan(&role, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan role stats")
		}
		stats.InterviewsByRole[role] = n
	}
	return stats, eris.Wrap(roleRows.Err(), "sqlite: dashboard stats rows")
}
