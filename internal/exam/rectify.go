package exam

import (
	"context"
	"errors"
)

type ReviewResult struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
	Retired int `json:"retired"`
}

// SubmitReviewAttempt grades a review-test submission and retires every
// outstanding mistake whose source question was now answered correctly.
// Each cloned question carries the id of the standard question it came
// from, so retirement is an exact lookup rather than a content match.
func (s *Service) SubmitReviewAttempt(ctx context.Context, userID, testID string, responses map[string]string) (ReviewResult, error) {
	mu := s.locks.lock(userID)
	defer mu.Unlock()

	t, err := s.store.GetTest(ctx, testID)
	if err != nil {
		if errors.Is(err, ErrTestNotFound) {
			return ReviewResult{}, ErrInvalidTest
		}
		return ReviewResult{}, err
	}
	if t.Kind != KindReview || t.UserID != userID {
		return ReviewResult{}, ErrInvalidTest
	}

	g := Grade(t.Questions, responses)

	var sources []string
	for i, q := range t.Questions {
		if g.Outcomes[i].Correct && q.SourceQuestionID != "" {
			sources = append(sources, q.SourceQuestionID)
		}
	}

	retired := int64(0)
	if len(sources) > 0 {
		ids, err := s.store.OutstandingBySource(ctx, userID, sources)
		if err != nil {
			return ReviewResult{}, err
		}
		if len(ids) > 0 {
			retired, err = s.store.MarkRetired(ctx, ids)
			if err != nil {
				return ReviewResult{}, err
			}
		}
	}

	res := ReviewResult{Correct: g.Correct, Total: len(t.Questions), Retired: int(retired)}
	s.appendEvent(ctx, "ReviewSubmitted", testID, map[string]any{
		"user_id": userID,
		"correct": res.Correct,
		"total":   res.Total,
		"retired": res.Retired,
	})
	return res, nil
}
