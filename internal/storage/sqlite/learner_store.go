package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// LearnerStore implements learner persistence backed by SQLite.
type LearnerStore struct {
	db *DB
}

// NewLearnerStore creates a new SQLite-backed learner store.
func NewLearnerStore(db *DB) *LearnerStore {
	return &LearnerStore{db: db}
}

const learnerColumns = `id, name, email, selected_language, problems_solved, avg_accuracy,
	current_streak, best_streak, last_active_date, last_submission, topic_counts,
	created_at, updated_at`

// Create inserts a new learner.
func (s *LearnerStore) Create(ctx context.Context, l *domain.Learner) error {
	lastSubmission, topicCounts, err := marshalLearnerJSON(l)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO learners (`+learnerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID.String(), l.Name, l.Email, string(l.SelectedLanguage), l.ProblemsSolved, l.AvgAccuracy,
		l.CurrentStreak, l.BestStreak, l.LastActiveDate, lastSubmission, topicCounts,
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrLearnerAlreadyExists, l.Email)
		}
		return fmt.Errorf("insert learner: %w", err)
	}
	return nil
}

// Get retrieves a learner by ID.
func (s *LearnerStore) Get(ctx context.Context, id uuid.UUID) (*domain.Learner, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+learnerColumns+` FROM learners WHERE id = ?`, id.String())
	return scanLearner(row)
}

// GetByEmail retrieves a learner by normalized email.
func (s *LearnerStore) GetByEmail(ctx context.Context, email string) (*domain.Learner, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := s.db.QueryRowContext(ctx, `SELECT `+learnerColumns+` FROM learners WHERE email = ?`, email)
	return scanLearner(row)
}

// Update replaces the mutable fields of a learner.
func (s *LearnerStore) Update(ctx context.Context, l *domain.Learner) error {
	lastSubmission, topicCounts, err := marshalLearnerJSON(l)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE learners SET
			name = ?, selected_language = ?, problems_solved = ?, avg_accuracy = ?,
			current_streak = ?, best_streak = ?, last_active_date = ?,
			last_submission = ?, topic_counts = ?, updated_at = ?
		WHERE id = ?`,
		l.Name, string(l.SelectedLanguage), l.ProblemsSolved, l.AvgAccuracy,
		l.CurrentStreak, l.BestStreak, l.LastActiveDate,
		lastSubmission, topicCounts, l.UpdatedAt,
		l.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update learner: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrLearnerNotFound, l.ID)
	}
	return nil
}

// List returns all learners, oldest first.
func (s *LearnerStore) List(ctx context.Context) ([]*domain.Learner, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+learnerColumns+` FROM learners ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	defer rows.Close()

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

// AppendSubmission records one submission in the history table.
func (s *LearnerStore) AppendSubmission(ctx context.Context, learnerID uuid.UUID, rec domain.SubmissionRecord) error {
	topics, err := json.Marshal(rec.Topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, learner_id, problem_id, language, accuracy, status, topics, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), learnerID.String(), rec.ProblemID, string(rec.Language),
		rec.Accuracy, string(rec.Status), string(topics), rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// ListSubmissions returns a learner's submissions, newest first.
func (s *LearnerStore) ListSubmissions(ctx context.Context, learnerID uuid.UUID, limit int) ([]domain.SubmissionRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, problem_id, language, accuracy, status, topics, submitted_at
		FROM submissions WHERE learner_id = ?
		ORDER BY submitted_at DESC, rowid DESC
		LIMIT ?`, learnerID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	records := []domain.SubmissionRecord{}
	for rows.Next() {
		var rec domain.SubmissionRecord
		var id, language, status, topics string
		if err := rows.Scan(&id, &rec.ProblemID, &language, &rec.Accuracy, &status, &topics, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse submission id: %w", err)
		}
		rec.Language = domain.Language(language)
		rec.Status = domain.SubmissionStatus(status)
		if err := json.Unmarshal([]byte(topics), &rec.Topics); err != nil {
			return nil, fmt.Errorf("unmarshal topics: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLearner(row scanner) (*domain.Learner, error) {
	var l domain.Learner
	var id, language, topicCounts string
	var lastSubmission sql.NullString

	err := row.Scan(
		&id, &l.Name, &l.Email, &language, &l.ProblemsSolved, &l.AvgAccuracy,
		&l.CurrentStreak, &l.BestStreak, &l.LastActiveDate, &lastSubmission, &topicCounts,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLearnerNotFound
		}
		return nil, fmt.Errorf("scan learner: %w", err)
	}

	if l.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse learner id: %w", err)
	}
	l.SelectedLanguage = domain.Language(language)

	if err := json.Unmarshal([]byte(topicCounts), &l.TopicCounts); err != nil {
		return nil, fmt.Errorf("unmarshal topic_counts: %w", err)
	}
	if lastSubmission.Valid && lastSubmission.String != "" {
		var rec domain.SubmissionRecord
		if err := json.Unmarshal([]byte(lastSubmission.String), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal last_submission: %w", err)
		}
		l.LastSubmission = &rec
	}
	if l.TopicCounts == nil {
		l.TopicCounts = make(map[string]int)
	}

	return &l, nil
}

func marshalLearnerJSON(l *domain.Learner) (sql.NullString, string, error) {
	var lastSubmission sql.NullString
	if l.LastSubmission != nil {
		data, err := json.Marshal(l.LastSubmission)
		if err != nil {
			return lastSubmission, "", fmt.Errorf("marshal last_submission: %w", err)
		}
		lastSubmission = sql.NullString{String: string(data), Valid: true}
	}

	counts := l.TopicCounts
	if counts == nil {
		counts = map[string]int{}
	}
	topicCounts, err := json.Marshal(counts)
	if err != nil {
		return lastSubmission, "", fmt.Errorf("marshal topic_counts: %w", err)
	}
	return lastSubmission, string(topicCounts), nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
