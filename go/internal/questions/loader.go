package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/rs/zerolog/log"
)

// LoadFile reads a JSON array of questions.
func LoadFile(path string) ([]models.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}

	var qs []models.Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("decode questions file: %w", err)
	}
	return qs, nil
}

// Seed validates and stores each question, skipping invalid ones. It returns
// how many were stored.
func (a *App) Seed(ctx context.Context, qs []models.Question) (int, error) {
	stored := 0
	for _, q := range qs {
		if _, err := a.CreateQuestion(ctx, q); err != nil {
			if ctx.Err() != nil {
				return stored, ctx.Err()
			}
			log.Warn().Err(err).Str("title", q.Title).Msg("skipping question")
			continue
		}
		stored++
	}
	return stored, nil
}
