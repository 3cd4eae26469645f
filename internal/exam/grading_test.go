package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionSet(answers ...string) []Question {
	qs := make([]Question, len(answers))
	for i, a := range answers {
		qs[i] = Question{
			ID:            string(rune('a' + i)),
			Ord:           i + 1,
			Prompt:        "prompt " + string(rune('a'+i)),
			Options:       map[string]string{"A": "A", "B": "B", "C": "C", "D": "D", "X": "X"},
			CorrectAnswer: a,
		}
	}
	return qs
}

func TestGrade_Scoring(t *testing.T) {
	tests := []struct {
		name      string
		answers   []string
		responses map[string]string
		score     int
		correct   int
	}{
		{
			name:      "all correct",
			answers:   []string{"A", "B", "C", "D"},
			responses: map[string]string{"a": "A", "b": "B", "c": "C", "d": "D"},
			score:     100, correct: 4,
		},
		{
			name:      "none correct non-blank",
			answers:   []string{"A", "B"},
			responses: map[string]string{"a": "X", "b": "X"},
			score:     0, correct: 0,
		},
		{
			name:      "half right with one blank",
			answers:   []string{"A", "B", "C", "D"},
			responses: map[string]string{"a": "A", "b": "X", "c": "C"},
			score:     50, correct: 2,
		},
		{
			name:      "one of three rounds to 33",
			answers:   []string{"A", "B", "C"},
			responses: map[string]string{"a": "A"},
			score:     33, correct: 1,
		},
		{
			name:      "two of three rounds to 67",
			answers:   []string{"A", "B", "C"},
			responses: map[string]string{"a": "A", "b": "B"},
			score:     67, correct: 2,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := Grade(questionSet(tc.answers...), tc.responses)
			assert.Equal(t, tc.score, g.Score)
			assert.Equal(t, tc.correct, g.Correct)
			assert.Len(t, g.Outcomes, len(tc.answers))
		})
	}
}

func TestGrade_NormalizesWhitespaceAndCase(t *testing.T) {
	qs := questionSet(" A ")
	g := Grade(qs, map[string]string{"a": "  a"})
	require.Len(t, g.Outcomes, 1)
	assert.True(t, g.Outcomes[0].Correct)
	assert.Equal(t, "a", g.Outcomes[0].AnswerGiven) // stored trimmed, as given
	assert.Equal(t, 100, g.Score)
}

func TestGrade_BlankIsIncorrectNotCorrect(t *testing.T) {
	qs := questionSet("A", "B")
	g := Grade(qs, map[string]string{"a": "A", "b": "   "})
	require.Len(t, g.Outcomes, 2)
	assert.False(t, g.Outcomes[1].Correct)
	assert.Equal(t, "", g.Outcomes[1].AnswerGiven)
	assert.Equal(t, 50, g.Score)
}

func TestGrade_PreservesQuestionOrder(t *testing.T) {
	qs := questionSet("A", "B", "C", "D")
	g := Grade(qs, map[string]string{"d": "D", "a": "A"})
	for i, o := range g.Outcomes {
		assert.Equal(t, qs[i].ID, o.QuestionID)
		assert.Equal(t, i+1, o.Ord)
	}
}

func TestGrade_EmptyQuestionSet(t *testing.T) {
	g := Grade(nil, map[string]string{"a": "A"})
	assert.Equal(t, 0, g.Score)
	assert.Empty(t, g.Outcomes)
}
