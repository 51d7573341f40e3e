package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/goldencrust/interview-agent/internal/model"
)

// pgxPool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool pgxPool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection. The
// transcript append runs once per conversational turn, so it is the hot path.
var preparedStatements = map[string]string{
	"get_candidate":     `SELECT id, full_name, phone_number, COALESCE(email, ''), target_role, years_of_experience, expected_salary, has_field_experience, COALESCE(proximity_to_branch, ''), COALESCE(can_start_immediately, ''), COALESCE(academic_status, ''), created_at FROM candidates WHERE id = $1`,
	"append_transcript": `UPDATE interviews SET transcript = $1, inconsistencies = $2, updated_at = now() WHERE id = $3`,
	"mark_completed":    `UPDATE interviews SET status = $1, completed_at = $2, duration_seconds = $3, updated_at = now() WHERE id = $4`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS candidates (
	id                    TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	full_name             TEXT NOT NULL,
	phone_number          TEXT NOT NULL,
	email                 TEXT,
	target_role           TEXT NOT NULL,
	years_of_experience   INTEGER NOT NULL DEFAULT 0,
	expected_salary       INTEGER NOT NULL DEFAULT 0,
	has_field_experience  BOOLEAN NOT NULL DEFAULT false,
	proximity_to_branch   TEXT,
	can_start_immediately TEXT,
	academic_status       TEXT,
	registration_form     JSONB,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS interviews (
	id               TEXT PRIMARY KEY,
	candidate_id     TEXT NOT NULL REFERENCES candidates(id),
	status           TEXT NOT NULL DEFAULT 'in_progress',
	transcript       JSONB,
	inconsistencies  JSONB,
	started_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at     TIMESTAMPTZ,
	duration_seconds DOUBLE PRECISION,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS credibility_reports (
	interview_id TEXT PRIMARY KEY REFERENCES interviews(id),
	score        INTEGER NOT NULL,
	level        TEXT NOT NULL,
	report       JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_interviews_candidate_id ON interviews(candidate_id);
CREATE INDEX IF NOT EXISTS idx_interviews_status ON interviews(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetCandidate(ctx context.Context, candidateID string) (*model.Candidate, error) {
	var c model.Candidate
	err := s.pool.QueryRow(ctx,
		`SELECT id, full_name, phone_number, COALESCE(email, ''), target_role, years_of_experience, expected_salary, has_field_experience, COALESCE(proximity_to_branch, ''), COALESCE(can_start_immediately, ''), COALESCE(academic_status, ''), created_at FROM candidates WHERE id = $1`,
		candidateID,
	).Scan(
		&c.ID, &c.FullName, &c.PhoneNumber, &c.Email, &c.TargetRole,
		&c.YearsOfExperience, &c.ExpectedSalary, &c.HasFieldExperience,
		&c.ProximityToBranch, &c.CanStartImmediately, &c.AcademicStatus, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: candidate %s", candidateID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get candidate %s", candidateID)
	}
	return &c, nil
}

func (s *PostgresStore) GetRegistrationForm(ctx context.Context, candidateID string) (*model.RegistrationForm, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT registration_form FROM candidates WHERE id = $1`,
		candidateID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: candidate %s", candidateID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get registration form %s", candidateID)
	}

	form := &model.RegistrationForm{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, form); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal registration form")
		}
	}
	return form, nil
}

func (s *PostgresStore) CreateInterview(ctx context.Context, interviewID, candidateID string, startedAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO interviews (id, candidate_id, status, started_at) VALUES ($1, $2, $3, $4)`,
		interviewID, candidateID, string(model.InterviewStatusInProgress), startedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: create interview %s", interviewID)
}

func (s *PostgresStore) AppendTranscript(ctx context.Context, interviewID string, turns []model.Turn, inconsistencies []model.Inconsistency) error {
	turnsJSON, err := json.Marshal(turns)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal transcript")
	}
	incJSON, err := json.Marshal(inconsistencies)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal inconsistencies")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE interviews SET transcript = $1, inconsistencies = $2, updated_at = now() WHERE id = $3`,
		turnsJSON, incJSON, interviewID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: append transcript %s", interviewID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: interview %s", interviewID)
	}
	return nil
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, interviewID string, duration time.Duration) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE interviews SET status = $1, completed_at = $2, duration_seconds = $3, updated_at = now() WHERE id = $4`,
		string(model.InterviewStatusCompleted), time.Now().UTC(), duration.Seconds(), interviewID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark completed %s", interviewID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: interview %s", interviewID)
	}
	return nil
}

func (s *PostgresStore) GetInterview(ctx context.Context, interviewID string) (*model.Interview, error) {
	var iv model.Interview
	var transcript, inconsistencies []byte
	var duration *float64
	err := s.pool.QueryRow(ctx,
		`SELECT id, candidate_id, status, transcript, inconsistencies, started_at, completed_at, duration_seconds FROM interviews WHERE id = $1`,
		interviewID,
	).Scan(&iv.ID, &iv.CandidateID, &iv.Status, &transcript, &inconsistencies, &iv.StartedAt, &iv.CompletedAt, &duration)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: interview %s", interviewID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get interview %s", interviewID)
	}

	if duration != nil {
		iv.DurationSeconds = *duration
	}
	if len(transcript) > 0 {
		if err := json.Unmarshal(transcript, &iv.Transcript); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal transcript")
		}
	}
	if len(inconsistencies) > 0 {
		if err := json.Unmarshal(inconsistencies, &iv.Inconsistencies); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal inconsistencies")
		}
	}
	return &iv, nil
}

func (s *PostgresStore) ListInterviews(ctx context.Context, filter model.InterviewFilter) ([]model.Interview, error) {
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
		if where == "" {
			where = " WHERE "
		}
		where += "r.interview_id IS NULL"
	}
	if filter.Status != "" {
		appendCond("i.status = $"+strconv.Itoa(len(args)+1), string(filter.Status))
	}
	if filter.CandidateID != "" {
		appendCond("i.candidate_id = $"+strconv.Itoa(len(args)+1), filter.CandidateID)
	}

	query += where + " ORDER BY i.started_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list interviews")
	}
	defer rows.Close()

	var out []model.Interview
	for rows.Next() {
		var iv model.Interview
		if err := rows.Scan(&iv.ID, &iv.CandidateID, &iv.Status, &iv.StartedAt, &iv.CompletedAt, &iv.DurationSeconds); err != nil {
			return nil, eris.Wrap(err, "postgres: scan interview")
		}
		out = append(out, iv)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list interviews rows")
}

func (s *PostgresStore) SaveCredibilityReport(ctx context.Context, report *model.CredibilityReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal credibility report")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO credibility_reports (interview_id, score, level, report, created_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (interview_id) DO UPDATE SET score = $2, level = $3, report = $4, created_at = $5`,
		report.InterviewID, report.Score, report.Level, reportJSON, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save credibility report %s", report.InterviewID)
}

func (s *PostgresStore) GetCredibilityReport(ctx context.Context, interviewID string) (*model.CredibilityReport, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT report FROM credibility_reports WHERE interview_id = $1`,
		interviewID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: credibility report %s", interviewID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get credibility report %s", interviewID)
	}

	var report model.CredibilityReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal credibility report")
	}
	return &report, nil
}

func (s *PostgresStore) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{InterviewsByRole: map[string]int{}}

	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM candidates),
			(SELECT count(*) FROM interviews),
			(SELECT count(*) FROM interviews WHERE status = 'completed'),
			COALESCE((SELECT avg(duration_seconds) FROM interviews WHERE duration_seconds > 0), 0),
			COALESCE((SELECT avg(score) FROM credibility_reports), 0),
			(SELECT count(*) FROM interviews, jsonb_array_elements(COALESCE(inconsistencies, '[]'::jsonb)) e WHERE e->>'type' = 'llm_hallucination')
	`).Scan(
		&stats.TotalCandidates, &stats.TotalInterviews, &stats.CompletedInterviews,
		&stats.AvgDurationSeconds, &stats.AvgCredibilityScore, &stats.HallucinationsCaught,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: dashboard stats")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT c.target_role, count(*) FROM interviews i
		JOIN candidates c ON c.id = i.candidate_id
		GROUP BY c.target_role
	`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: dashboard stats by role")
	}
	defer rows.Close()

	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan role stats")
		}
		stats.InterviewsByRole[role] = n
	}
	return stats, eris.Wrap(rows.Err(), "postgres: dashboard stats rows")
}
