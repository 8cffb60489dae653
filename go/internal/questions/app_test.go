package questions

import (
	"context"
	"fmt"
	"testing"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	random     *models.Question
	created    []models.Question
	shouldFail bool

	lastLimit  int
	lastOffset int
}

func (m *mockRepository) RandomQuestion(ctx context.Context) (*models.Question, error) {
	if m.shouldFail {
		return nil, fmt.Errorf("mock failure")
	}
	if m.random == nil {
		return nil, ErrNoQuestions
	}
	return m.random, nil
}

func (m *mockRepository) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	if m.random != nil && m.random.ID == id {
		return m.random, nil
	}
	return nil, ErrQuestionNotFound
}

func (m *mockRepository) CreateQuestion(ctx context.Context, q models.Question) (*models.Question, error) {
	q.ID = fmt.Sprintf("q-%d", len(m.created)+1)
	m.created = append(m.created, q)
	return &q, nil
}

func (m *mockRepository) ListQuestions(ctx context.Context, limit, offset int) ([]*models.Question, error) {
	if m.shouldFail {
		return nil, fmt.Errorf("mock failure")
	}
	m.lastLimit, m.lastOffset = limit, offset
	return nil, nil
}

func (m *mockRepository) CountQuestions(ctx context.Context) (int64, error) {
	return int64(len(m.created)), nil
}

func question(tests int) models.Question {
	q := models.Question{ID: "q1", Title: "Reverse a list", Type: models.QuestionTypeArray}
	for i := 0; i < tests; i++ {
		q.TestCases = append(q.TestCases, models.TestCase{TestID: fmt.Sprint(i), Input: "[1,2]", Output: "[2,1]"})
	}
	return q
}

func TestFetchRandomContent(t *testing.T) {
	q := question(3)
	app := NewApp(&mockRepository{random: &q})

	got, err := app.FetchRandomContent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "q1", got.ID)
	assert.Equal(t, 3, got.TotalTests())
}

func TestFetchRandomContent_Failures(t *testing.T) {
	empty := question(0)

	tests := []struct {
		name string
		repo *mockRepository
		want error
	}{
		{name: "empty pool", repo: &mockRepository{}, want: ErrNoQuestions},
		{name: "no test cases", repo: &mockRepository{random: &empty}, want: ErrNoTestCases},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewApp(tt.repo).FetchRandomContent(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NewApp(&mockRepository{shouldFail: true}).FetchRandomContent(context.Background())
	assert.Error(t, err)
}

func TestCreateQuestion_Validation(t *testing.T) {
	repo := &mockRepository{}
	app := NewApp(repo)

	_, err := app.CreateQuestion(context.Background(), question(0))
	assert.ErrorIs(t, err, ErrNoTestCases)

	untitled := question(1)
	untitled.Title = ""
	_, err = app.CreateQuestion(context.Background(), untitled)
	assert.Error(t, err)

	badType := question(1)
	badType.Type = "matrix"
	_, err = app.CreateQuestion(context.Background(), badType)
	assert.Error(t, err)

	created, err := app.CreateQuestion(context.Background(), question(2))
	require.NoError(t, err)
	assert.Equal(t, "q-1", created.ID)
	assert.Len(t, repo.created, 1)
}

func TestListQuestions_ClampsPage(t *testing.T) {
	repo := &mockRepository{}
	app := NewApp(repo)

	_, err := app.ListQuestions(context.Background(), 0, -5)
	require.NoError(t, err)
	assert.Equal(t, defaultPageSize, repo.lastLimit)
	assert.Equal(t, 0, repo.lastOffset)

	_, err = app.ListQuestions(context.Background(), 1000, 40)
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, repo.lastLimit)
	assert.Equal(t, 40, repo.lastOffset)

	_, err = NewApp(&mockRepository{shouldFail: true}).ListQuestions(context.Background(), 10, 0)
	assert.Error(t, err)
}
