package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Question struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	TestCases   json.RawMessage `json:"test_cases"`
	Elo         int32           `json:"elo"`
	Type        string          `json:"type"`
	CreatedAt   time.Time       `json:"created_at"`
}

const getRandomQuestion = `-- name: GetRandomQuestion :one
SELECT id, title, description, test_cases, elo, type, created_at
FROM questions
WHERE jsonb_array_length(test_cases) > 0
ORDER BY random()
LIMIT 1
`

func (q *Queries) GetRandomQuestion(ctx context.Context) (Question, error) {
	row := q.db.QueryRowContext(ctx, getRandomQuestion)
	var i Question
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.TestCases,
		&i.Elo,
		&i.Type,
		&i.CreatedAt,
	)
	return i, err
}

const getQuestion = `-- name: GetQuestion :one
SELECT id, title, description, test_cases, elo, type, created_at
FROM questions
WHERE id = $1
`

func (q *Queries) GetQuestion(ctx context.Context, id uuid.UUID) (Question, error) {
	row := q.db.QueryRowContext(ctx, getQuestion, id)
	var i Question
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.TestCases,
		&i.Elo,
		&i.Type,
		&i.CreatedAt,
	)
	return i, err
}

const createQuestion = `-- name: CreateQuestion :one
INSERT INTO questions (title, description, test_cases, elo, type)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, title, description, test_cases, elo, type, created_at
`

type CreateQuestionParams struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	TestCases   json.RawMessage `json:"test_cases"`
	Elo         int32           `json:"elo"`
	Type        string          `json:"type"`
}

func (q *Queries) CreateQuestion(ctx context.Context, arg CreateQuestionParams) (Question, error) {
	row := q.db.QueryRowContext(ctx, createQuestion,
		arg.Title,
		arg.Description,
		arg.TestCases,
		arg.Elo,
		arg.Type,
	)
	var i Question
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.TestCases,
		&i.Elo,
		&i.Type,
		&i.CreatedAt,
	)
	return i, err
}

const listQuestions = `-- name: ListQuestions :many
SELECT id, title, description, test_cases, elo, type, created_at
FROM questions
ORDER BY created_at, id
LIMIT $1 OFFSET $2
`

type ListQuestionsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListQuestions(ctx context.Context, arg ListQuestionsParams) ([]Question, error) {
	rows, err := q.db.QueryContext(ctx, listQuestions, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Question
	for rows.Next() {
		var i Question
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.Description,
			&i.TestCases,
			&i.Elo,
			&i.Type,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countQuestions = `-- name: CountQuestions :one
SELECT COUNT(*) FROM questions
`

func (q *Queries) CountQuestions(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countQuestions)
	var count int64
	err := row.Scan(&count)
	return count, err
}
