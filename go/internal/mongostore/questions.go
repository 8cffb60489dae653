package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/codeduel/go/internal/models"
	"github.com/mcdev12/codeduel/go/internal/questions"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QuestionRepo serves the question pool from MongoDB.
type QuestionRepo struct {
	collection *mongo.Collection
}

// servable matches questions that have at least one test case.
var servable = bson.M{"testCases.0": bson.M{"$exists": true}}

// RandomQuestion samples one servable question.
func (r *QuestionRepo) RandomQuestion(ctx context.Context) (*models.Question, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: servable}},
		{{Key: "$sample", Value: bson.M{"size": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to sample question: %w", err)
	}
	defer cursor.Close(ctx)

	var sampled []models.Question
	if err := cursor.All(ctx, &sampled); err != nil {
		return nil, fmt.Errorf("failed to decode question: %w", err)
	}
	if len(sampled) == 0 {
		return nil, questions.ErrNoQuestions
	}
	return &sampled[0], nil
}

// GetQuestion retrieves a question by ID
func (r *QuestionRepo) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	var q models.Question
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, questions.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

// CreateQuestion stores a question under a generated ID when none is set.
func (r *QuestionRepo) CreateQuestion(ctx context.Context, question models.Question) (*models.Question, error) {
	if question.ID == "" {
		question.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.collection.InsertOne(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return &question, nil
}

// ListQuestions pages through the pool ordered by ID.
func (r *QuestionRepo) ListQuestions(ctx context.Context, limit, offset int) ([]*models.Question, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.Question
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}

	results := make([]*models.Question, 0, len(docs))
	for i := range docs {
		results = append(results, &docs[i])
	}
	return results, nil
}

// CountQuestions returns the number of servable questions
func (r *QuestionRepo) CountQuestions(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, servable)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}
