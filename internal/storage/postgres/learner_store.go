package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/felixgeelhaar/codelite/internal/leaderboard"
	"github.com/felixgeelhaar/codelite/internal/learner"
	"github.com/felixgeelhaar/codelite/internal/streak"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"
)

// uniqueViolation is the SQLSTATE for unique_violation
const uniqueViolation = "23505"

// LearnerStore implements learner persistence backed by PostgreSQL.
type LearnerStore struct {
	pool *pgxpool.Pool
}

// NewLearnerStore creates a new PostgreSQL learner store
func NewLearnerStore(pool *pgxpool.Pool) *LearnerStore {
	return &LearnerStore{pool: pool}
}

var (
	_ learner.Store         = (*LearnerStore)(nil)
	_ learner.SubmissionLog = (*LearnerStore)(nil)
	_ leaderboard.Board     = (*Board)(nil)
)

const learnerColumns = `id, name, email, selected_language, problems_solved, avg_accuracy,
	current_streak, best_streak, to_char(last_active_date, 'YYYY-MM-DD'), last_submission,
	topic_counts, created_at, updated_at`

// Create inserts a new learner
func (s *LearnerStore) Create(ctx context.Context, l *domain.Learner) error {
	lastActive, lastSubmission, topicCounts, err := learnerParams(l)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO learners (id, name, email, selected_language, problems_solved, avg_accuracy,
			current_streak, best_streak, last_active_date, last_submission, topic_counts,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.pool.Exec(ctx, query,
		l.ID, l.Name, l.Email, string(l.SelectedLanguage), l.ProblemsSolved, l.AvgAccuracy,
		l.CurrentStreak, l.BestStreak, lastActive, lastSubmission, topicCounts,
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrLearnerAlreadyExists, l.Email)
		}
		return fmt.Errorf("insert learner: %w", err)
	}
	return nil
}

// Get retrieves a learner by ID
func (s *LearnerStore) Get(ctx context.Context, id uuid.UUID) (*domain.Learner, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+learnerColumns+` FROM learners WHERE id = $1`, id)
	return scanLearner(row)
}

// GetByEmail retrieves a learner by normalized email
func (s *LearnerStore) GetByEmail(ctx context.Context, email string) (*domain.Learner, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := s.pool.QueryRow(ctx, `SELECT `+learnerColumns+` FROM learners WHERE email = $1`, email)
	return scanLearner(row)
}

// Update replaces the mutable fields of a learner
func (s *LearnerStore) Update(ctx context.Context, l *domain.Learner) error {
	lastActive, lastSubmission, topicCounts, err := learnerParams(l)
	if err != nil {
		return err
	}

	query := `
		UPDATE learners SET
			name = $2, selected_language = $3, problems_solved = $4, avg_accuracy = $5,
			current_streak = $6, best_streak = $7, last_active_date = $8,
			last_submission = $9, topic_counts = $10, updated_at = $11
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		l.ID, l.Name, string(l.SelectedLanguage), l.ProblemsSolved, l.AvgAccuracy,
		l.CurrentStreak, l.BestStreak, lastActive,
		lastSubmission, topicCounts, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update learner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrLearnerNotFound, l.ID)
	}
	return nil
}

// List returns all learners, oldest first
func (s *LearnerStore) List(ctx context.Context) ([]*domain.Learner, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+learnerColumns+` FROM learners ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	defer rows.Close()

	return collectLearners(rows)
}

// AppendSubmission records one submission in the history table
func (s *LearnerStore) AppendSubmission(ctx context.Context, learnerID uuid.UUID, rec domain.SubmissionRecord) error {
	topics, err := json.Marshal(nonNil(rec.Topics))
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}

	query := `
		INSERT INTO submissions (id, learner_id, problem_id, language, accuracy, status, topics, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.pool.Exec(ctx, query,
		rec.ID, learnerID, rec.ProblemID, string(rec.Language),
		rec.Accuracy, string(rec.Status), topics, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// ListSubmissions returns a learner's submissions, newest first
func (s *LearnerStore) ListSubmissions(ctx context.Context, learnerID uuid.UUID, limit int) ([]domain.SubmissionRecord, error) {
	query := `
		SELECT id, problem_id, language, accuracy, status, topics, submitted_at
		FROM submissions WHERE learner_id = $1
		ORDER BY submitted_at DESC, id
	`
	args := []any{learnerID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	records := []domain.SubmissionRecord{}
	for rows.Next() {
		var rec domain.SubmissionRecord
		var language, status string
		var topics []byte
		if err := rows.Scan(&rec.ID, &rec.ProblemID, &language, &rec.Accuracy, &status, &topics, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		rec.Language = domain.Language(language)
		rec.Status = domain.SubmissionStatus(status)
		if err := json.Unmarshal(topics, &rec.Topics); err != nil {
			return nil, fmt.Errorf("unmarshal topics: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Board answers leaderboard queries straight from the learners table
type Board struct {
	pool *pgxpool.Pool
}

// NewBoard creates a leaderboard over the learners table
func NewBoard(pool *pgxpool.Pool) *Board {
	return &Board{pool: pool}
}

// Update is a no-op; learner rows are the ranking source
func (b *Board) Update(context.Context, leaderboard.Entry) error {
	return nil
}

// orderColumns maps each sort key to its ORDER BY columns
var orderColumns = map[leaderboard.SortKey][]string{
	leaderboard.SortStreak:   {"best_streak", "current_streak"},
	leaderboard.SortProblems: {"problems_solved"},
	leaderboard.SortAccuracy: {"avg_accuracy"},
}

// Top ranks learners in SQL using the same tie-break as leaderboard.Rank
func (b *Board) Top(ctx context.Context, key leaderboard.SortKey, n int) ([]leaderboard.Entry, error) {
	cols, ok := orderColumns[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort key %q", domain.ErrInvalidInput, key)
	}

	order := make([]string, 0, len(cols)+2)
	for _, c := range cols {
		order = append(order, pq.QuoteIdentifier(c)+" DESC")
	}
	order = append(order, pq.QuoteIdentifier("name")+` COLLATE "C"`, "id::text")

	query := `SELECT ` + learnerColumns + ` FROM learners ORDER BY ` + strings.Join(order, ", ")
	args := []any{}
	if n > 0 {
		query += ` LIMIT $1`
		args = append(args, n)
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	learners, err := collectLearners(rows)
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboard.Entry, len(learners))
	for i, l := range learners {
		entries[i] = leaderboard.EntryFor(l)
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func collectLearners(rows pgx.Rows) ([]*domain.Learner, error) {
	learners := []*domain.Learner{}
	for rows.Next() {
		l, err := scanLearner(rows)
		if err != nil {
			return nil, err
		}
		learners = append(learners, l)
	}
	return learners, rows.Err()
}

func scanLearner(row pgx.Row) (*domain.Learner, error) {
	var l domain.Learner
	var language string
	var lastSubmission pqtype.NullRawMessage
	var topicCounts []byte

	err := row.Scan(
		&l.ID, &l.Name, &l.Email, &language, &l.ProblemsSolved, &l.AvgAccuracy,
		&l.CurrentStreak, &l.BestStreak, &l.LastActiveDate, &lastSubmission,
		&topicCounts, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLearnerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan learner: %w", err)
	}

	l.SelectedLanguage = domain.Language(language)
	if err := json.Unmarshal(topicCounts, &l.TopicCounts); err != nil {
		return nil, fmt.Errorf("unmarshal topic_counts: %w", err)
	}
	if l.TopicCounts == nil {
		l.TopicCounts = make(map[string]int)
	}
	if lastSubmission.Valid {
		var rec domain.SubmissionRecord
		if err := json.Unmarshal(lastSubmission.RawMessage, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal last_submission: %w", err)
		}
		l.LastSubmission = &rec
	}
	return &l, nil
}

func learnerParams(l *domain.Learner) (lastActive any, lastSubmission pqtype.NullRawMessage, topicCounts []byte, err error) {
	date, err := streak.ParseDate(l.LastActiveDate)
	if err != nil {
		return nil, lastSubmission, nil, err
	}

	if l.LastSubmission != nil {
		data, err := json.Marshal(l.LastSubmission)
		if err != nil {
			return nil, lastSubmission, nil, fmt.Errorf("marshal last_submission: %w", err)
		}
		lastSubmission = pqtype.NullRawMessage{RawMessage: data, Valid: true}
	}

	counts := l.TopicCounts
	if counts == nil {
		counts = map[string]int{}
	}
	topicCounts, err = json.Marshal(counts)
	if err != nil {
		return nil, lastSubmission, nil, fmt.Errorf("marshal topic_counts: %w", err)
	}
	return date, lastSubmission, topicCounts, nil
}

func nonNil(topics []string) []string {
	if topics == nil {
		return []string{}
	}
	return topics
}
