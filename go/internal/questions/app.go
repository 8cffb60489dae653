package questions

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoQuestions      = errors.New("question pool is empty")
	ErrQuestionNotFound = errors.New("question not found")
	ErrNoTestCases      = errors.New("question has no test cases")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// QuestionsRepository defines what the app layer needs from the repository
type QuestionsRepository interface {
	RandomQuestion(ctx context.Context) (*models.Question, error)
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	CreateQuestion(ctx context.Context, question models.Question) (*models.Question, error)
	ListQuestions(ctx context.Context, limit, offset int) ([]*models.Question, error)
	CountQuestions(ctx context.Context) (int64, error)
}

// App handles question business logic
type App struct {
	repo QuestionsRepository
}

// NewApp creates a new questions App
func NewApp(repo QuestionsRepository) *App {
	return &App{
		repo: repo,
	}
}

// FetchRandomContent returns a random question for a new match. Each pick is
// independent of earlier ones. A question without test cases is an error.
func (a *App) FetchRandomContent(ctx context.Context) (models.Question, error) {
	q, err := a.repo.RandomQuestion(ctx)
	if err != nil {
		return models.Question{}, fmt.Errorf("failed to fetch random question: %w", err)
	}
	if q.TotalTests() == 0 {
		log.Warn().Str("question_id", q.ID).Msg("question pool returned a question without test cases")
		return models.Question{}, fmt.Errorf("%w: %s", ErrNoTestCases, q.ID)
	}
	return *q, nil
}

// GetQuestion retrieves a question by ID
func (a *App) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	q, err := a.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

// CreateQuestion validates and stores a question
func (a *App) CreateQuestion(ctx context.Context, question models.Question) (*models.Question, error) {
	if err := a.validateQuestion(question); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	created, err := a.repo.CreateQuestion(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	log.Info().
		Str("question_id", created.ID).
		Str("title", created.Title).
		Int("total_tests", created.TotalTests()).
		Msg("created question")
	return created, nil
}

// ListQuestions pages through the pool. A non-positive limit uses the default
// page size and large limits are capped.
func (a *App) ListQuestions(ctx context.Context, limit, offset int) ([]*models.Question, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	qs, err := a.repo.ListQuestions(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return qs, nil
}

// CountQuestions returns the number of questions in the pool
func (a *App) CountQuestions(ctx context.Context) (int64, error) {
	return a.repo.CountQuestions(ctx)
}

func (a *App) validateQuestion(q models.Question) error {
	if q.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(q.TestCases) == 0 {
		return ErrNoTestCases
	}
	switch q.Type {
	case models.QuestionTypeArray, models.QuestionTypeGraph, models.QuestionTypeTree:
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	for i, tc := range q.TestCases {
		if tc.Output == "" {
			return fmt.Errorf("test case %d has no expected output", i)
		}
	}
	return nil
}
