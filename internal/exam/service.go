package exam

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventLog receives domain events. Appends are best-effort; a failing log
// never fails the operation that produced the event.
type EventLog interface {
	Append(ctx context.Context, typ, key string, data any) error
}

// Service implements the scoring pipeline and the review-set engine on top
// of a Store. Callers pass the authenticated student id explicitly; the
// service knows nothing about transports or sessions.
type Service struct {
	store  Store
	events EventLog
	locks  *userLocks
	now    func() time.Time
}

func NewService(store Store, events EventLog) *Service {
	return &Service{
		store:  store,
		events: events,
		locks:  newUserLocks(),
		now:    time.Now,
	}
}

// SubmitAttempt grades a standard (or custom) test submission and appends
// the attempt with all of its outcomes to the ledger in one transaction.
func (s *Service) SubmitAttempt(ctx context.Context, userID, testID string, responses map[string]string, timeSpentSec int) (Attempt, error) {
	t, err := s.store.GetTest(ctx, testID)
	if err != nil {
		return Attempt{}, err
	}
	if t.Kind == KindReview {
		// Review attempts go through SubmitReviewAttempt.
		return Attempt{}, ErrInvalidTest
	}

	g := Grade(t.Questions, responses)
	a := Attempt{
		ID:           uuid.NewString(),
		UserID:       userID,
		TestID:       t.ID,
		Score:        g.Score,
		TimeSpentSec: timeSpentSec,
		CompletedAt:  s.now().Unix(),
		Outcomes:     g.Outcomes,
	}
	for i := range a.Outcomes {
		a.Outcomes[i].ID = uuid.NewString()
		a.Outcomes[i].AttemptID = a.ID
	}
	if err := s.store.InsertAttempt(ctx, a); err != nil {
		return Attempt{}, err
	}
	s.appendEvent(ctx, "AttemptSubmitted", a.ID, map[string]any{
		"user_id": userID,
		"test_id": t.ID,
		"score":   a.Score,
	})
	return a, nil
}

func (s *Service) appendEvent(ctx context.Context, typ, key string, data any) {
	if s.events == nil {
		return
	}
	_ = s.events.Append(ctx, typ, key, data)
}
