package models

// QuestionType categorizes the data structure a question exercises.
type QuestionType string

const (
	QuestionTypeGraph QuestionType = "graph"
	QuestionTypeTree  QuestionType = "tree"
	QuestionTypeArray QuestionType = "array"
)

// TestCase is a single judged case of a question.
type TestCase struct {
	TestID string `json:"testId" bson:"testId"`
	Input  string `json:"input,omitempty" bson:"input,omitempty"`
	Output string `json:"output" bson:"output"`
	Hidden bool   `json:"hidden,omitempty" bson:"hidden,omitempty"`
}

// Question represents a coding question served to both players of a match.
type Question struct {
	ID          string       `json:"id" bson:"_id,omitempty"`
	Title       string       `json:"title" bson:"title"`
	Description string       `json:"description" bson:"description"`
	TestCases   []TestCase   `json:"testCases" bson:"testCases"`
	Elo         int          `json:"elo" bson:"elo"`
	Type        QuestionType `json:"type" bson:"type"`
}

// TotalTests returns the number of judged test cases.
func (q Question) TotalTests() int {
	return len(q.TestCases)
}
