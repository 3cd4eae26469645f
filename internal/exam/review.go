package exam

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ReviewChunkSize bounds the number of questions per generated review test.
const ReviewChunkSize = 20

type RebuildResult struct {
	TestsCreated int `json:"tests_created"`
	Mistakes     int `json:"mistakes"`
}

// RebuildReviewTests replaces the student's entire review-test set with a
// fresh one built from their outstanding mistakes. Safe to invoke
// repeatedly; concurrent invocations for the same student are serialized.
func (s *Service) RebuildReviewTests(ctx context.Context, userID string) (RebuildResult, error) {
	mu := s.locks.lock(userID)
	defer mu.Unlock()

	if err := s.store.DeleteReviewTests(ctx, userID); err != nil {
		return RebuildResult{}, err
	}

	mistakes, err := s.store.OutstandingMistakes(ctx, userID)
	if err != nil {
		return RebuildResult{}, err
	}

	// Keep the first occurrence per question: the list is most-recent-first,
	// so repeated failures collapse onto the latest content snapshot.
	seen := map[string]bool{}
	unique := make([]Mistake, 0, len(mistakes))
	for _, m := range mistakes {
		if seen[m.QuestionID] {
			continue
		}
		seen[m.QuestionID] = true
		unique = append(unique, m)
	}
	if len(unique) == 0 {
		return RebuildResult{}, nil
	}

	chunks := chunkMistakes(unique, ReviewChunkSize)
	now := s.now().Unix()
	for i, chunk := range chunks {
		name := "Review"
		if len(chunks) > 1 {
			name = fmt.Sprintf("Review %d", i+1)
		}
		t := Test{
			ID:        uuid.NewString(),
			Kind:      KindReview,
			UserID:    userID,
			Name:      name,
			CreatedAt: now,
		}
		for ord, m := range chunk {
			t.Questions = append(t.Questions, Question{
				ID:               uuid.NewString(),
				TestID:           t.ID,
				Ord:              ord + 1,
				Prompt:           m.Prompt,
				Options:          m.Options,
				CorrectAnswer:    m.CorrectAnswer,
				Explanation:      m.Explanation,
				SourceQuestionID: m.QuestionID,
			})
		}
		if err := s.store.CreateTest(ctx, t); err != nil {
			return RebuildResult{}, err
		}
	}

	res := RebuildResult{TestsCreated: len(chunks), Mistakes: len(unique)}
	s.appendEvent(ctx, "ReviewRebuilt", userID, res)
	return res, nil
}

func chunkMistakes(ms []Mistake, size int) [][]Mistake {
	var chunks [][]Mistake
	for len(ms) > size {
		chunks = append(chunks, ms[:size])
		ms = ms[size:]
	}
	return append(chunks, ms)
}
