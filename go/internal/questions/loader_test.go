package questions

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBundledQuestions(t *testing.T) {
	qs, err := LoadFile(filepath.Join("..", "assets", "questions.json"))
	require.NoError(t, err)
	require.NotEmpty(t, qs)

	for _, q := range qs {
		assert.NotEmpty(t, q.Title)
		assert.Positive(t, q.TotalTests(), q.Title)
	}
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title": "not an array"}`), 0o600))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestSeedSkipsInvalidQuestions(t *testing.T) {
	repo := &mockRepository{}
	app := NewApp(repo)

	stored, err := app.Seed(context.Background(), []models.Question{
		question(2),
		{Title: "no tests", Type: models.QuestionTypeTree},
		question(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.Len(t, repo.created, 2)
}
