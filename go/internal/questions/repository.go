package questions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/mcdev12/codeduel/go/internal/questions/db"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	GetRandomQuestion(ctx context.Context) (db.Question, error)
	GetQuestion(ctx context.Context, id uuid.UUID) (db.Question, error)
	CreateQuestion(ctx context.Context, arg db.CreateQuestionParams) (db.Question, error)
	ListQuestions(ctx context.Context, arg db.ListQuestionsParams) ([]db.Question, error)
	CountQuestions(ctx context.Context) (int64, error)
}

// Repository implements question data access on Postgres
type Repository struct {
	queries Querier
}

// NewRepository creates a new questions repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// RandomQuestion picks one question uniformly at random.
func (r *Repository) RandomQuestion(ctx context.Context) (*models.Question, error) {
	q, err := r.queries.GetRandomQuestion(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoQuestions
		}
		return nil, fmt.Errorf("failed to get random question: %w", err)
	}
	return r.dbQuestionToModel(q)
}

// GetQuestion retrieves a question by ID
func (r *Repository) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	questionID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrQuestionNotFound
	}

	q, err := r.queries.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return r.dbQuestionToModel(q)
}

// CreateQuestion stores a new question and returns it with its generated ID
func (r *Repository) CreateQuestion(ctx context.Context, question models.Question) (*models.Question, error) {
	testCases, err := json.Marshal(question.TestCases)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal test cases: %w", err)
	}

	q, err := r.queries.CreateQuestion(ctx, db.CreateQuestionParams{
		Title:       question.Title,
		Description: question.Description,
		TestCases:   testCases,
		Elo:         int32(question.Elo),
		Type:        string(question.Type),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return r.dbQuestionToModel(q)
}

// ListQuestions returns one page of the pool, oldest first
func (r *Repository) ListQuestions(ctx context.Context, limit, offset int) ([]*models.Question, error) {
	rows, err := r.queries.ListQuestions(ctx, db.ListQuestionsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	results := make([]*models.Question, 0, len(rows))
	for _, row := range rows {
		q, err := r.dbQuestionToModel(row)
		if err != nil {
			return nil, err
		}
		results = append(results, q)
	}
	return results, nil
}

// CountQuestions returns the size of the question pool
func (r *Repository) CountQuestions(ctx context.Context) (int64, error) {
	count, err := r.queries.CountQuestions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// dbQuestionToModel converts a database question to domain model
func (r *Repository) dbQuestionToModel(q db.Question) (*models.Question, error) {
	var testCases []models.TestCase
	if len(q.TestCases) > 0 {
		if err := json.Unmarshal(q.TestCases, &testCases); err != nil {
			return nil, fmt.Errorf("failed to decode test cases of %s: %w", q.ID, err)
		}
	}

	return &models.Question{
		ID:          q.ID.String(),
		Title:       q.Title,
		Description: q.Description,
		TestCases:   testCases,
		Elo:         int(q.Elo),
		Type:        models.QuestionType(q.Type),
	}, nil
}
