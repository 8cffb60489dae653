package match

import (
	"context"
	"errors"
	"sync"

	"github.com/mcdev12/codeduel/go/internal/match/events"
	"github.com/mcdev12/codeduel/go/internal/models"
)

var errFakeFailure = errors.New("fake failure")

func testQuestion(id string, tests int) models.Question {
	q := models.Question{ID: id, Title: "Question " + id, Type: models.QuestionTypeArray}
	for i := 0; i < tests; i++ {
		q.TestCases = append(q.TestCases, models.TestCase{Input: "in", Output: "out"})
	}
	return q
}

// fakeContent returns a fixed question, or fails while shouldFail is set.
// When gate is set, each fetch signals entered and then waits for gate to close.
type fakeContent struct {
	mu         sync.Mutex
	question   models.Question
	shouldFail bool
	calls      int

	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeContent) FetchRandomContent(ctx context.Context) (models.Question, error) {
	if f.gate != nil {
		f.entered <- struct{}{}
		select {
		case <-f.gate:
		case <-ctx.Done():
			return models.Question{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.shouldFail {
		return models.Question{}, errFakeFailure
	}
	return f.question, nil
}

func (f *fakeContent) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shouldFail = fail
}

// fakeNotifier records notifications per connection.
type fakeNotifier struct {
	mu   sync.Mutex
	sent map[string][]events.Notification
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(map[string][]events.Notification)}
}

func (f *fakeNotifier) Send(connectionID string, n events.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[connectionID] = append(f.sent[connectionID], n)
}

func (f *fakeNotifier) of(connectionID string, t events.Type) []events.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []events.Notification
	for _, n := range f.sent[connectionID] {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeNotifier) count(t events.Type) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, list := range f.sent {
		for _, n := range list {
			if n.Type == t {
				total++
			}
		}
	}
	return total
}

// fakePersistence records saved results and fails the first failures calls.
type fakePersistence struct {
	mu       sync.Mutex
	saved    []*models.MatchResult
	failures int
	attempts int
}

func (f *fakePersistence) SaveCompletedSession(ctx context.Context, result *models.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts++
	if f.failures > 0 {
		f.failures--
		return errFakeFailure
	}
	f.saved = append(f.saved, result)
	return nil
}

func (f *fakePersistence) results() []*models.MatchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.MatchResult(nil), f.saved...)
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]models.Profile
}

func (f *fakeProfiles) UpsertProfile(ctx context.Context, profile models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.profiles == nil {
		f.profiles = make(map[string]models.Profile)
	}
	f.profiles[profile.PlayerID] = profile
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

func (f *fakePublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.EventType)
	}
	return out
}
