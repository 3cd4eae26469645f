package exam

import (
	"math"
	"strings"
)

// Graded is the result of scoring one submission against a question set.
type Graded struct {
	Score    int // round(100 * correct / total)
	Correct  int
	Outcomes []Outcome
}

// normalizeAnswer is the single normalization rule used by every grading
// path: trim surrounding whitespace, compare case-insensitively.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Grade scores responses (questionID -> submitted text, missing entries
// treated as blank) against the questions' canonical answers. Outcomes come
// back in question order; a blank submission is recorded as incorrect.
func Grade(questions []Question, responses map[string]string) Graded {
	g := Graded{Outcomes: make([]Outcome, 0, len(questions))}
	for i, q := range questions {
		given := strings.TrimSpace(responses[q.ID])
		correct := given != "" && normalizeAnswer(given) == normalizeAnswer(q.CorrectAnswer)
		if correct {
			g.Correct++
		}
		g.Outcomes = append(g.Outcomes, Outcome{
			QuestionID:  q.ID,
			Ord:         i + 1,
			AnswerGiven: given,
			Correct:     correct,
		})
	}
	if len(questions) > 0 {
		g.Score = int(math.Round(float64(g.Correct) / float64(len(questions)) * 100))
	}
	return g
}
