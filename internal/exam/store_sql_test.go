package exam_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/TestPilotSystem/TestPilot/internal/db"
	"github.com/TestPilotSystem/TestPilot/internal/exam"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB gives each test its own shared in-memory sqlite database so the
// connection pool sees one store per test.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

func standardTest(id string, answers ...string) exam.Test {
	t := exam.Test{ID: id, Kind: exam.KindStandard, Name: "Theory " + id, CreatedAt: 1000}
	for i, a := range answers {
		t.Questions = append(t.Questions, exam.Question{
			ID:            fmt.Sprintf("%s-q%d", id, i+1),
			TestID:        id,
			Ord:           i + 1,
			Prompt:        fmt.Sprintf("prompt %d", i+1),
			Options:       map[string]string{"A": "first", "B": "second"},
			CorrectAnswer: a,
			Explanation:   "see handbook",
		})
	}
	return t
}

func attemptRow(id, userID, testID string, completedAt int64, outcomes ...exam.Outcome) exam.Attempt {
	for i := range outcomes {
		outcomes[i].ID = fmt.Sprintf("%s-o%d", id, i+1)
		outcomes[i].AttemptID = id
		outcomes[i].Ord = i + 1
	}
	return exam.Attempt{
		ID: id, UserID: userID, TestID: testID,
		Score: 0, TimeSpentSec: 60, CompletedAt: completedAt,
		Outcomes: outcomes,
	}
}

func TestSQLStore_CreateAndGetTest(t *testing.T) {
	ctx := context.Background()
	store := exam.NewSQLStore(openTestDB(t))

	in := standardTest("t1", "A", "B", "A")
	require.NoError(t, store.CreateTest(ctx, in))

	got, err := store.GetTest(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, exam.KindStandard, got.Kind)
	assert.Equal(t, "", got.UserID)
	require.Len(t, got.Questions, 3)
	for i, q := range got.Questions {
		assert.Equal(t, in.Questions[i].ID, q.ID)
		assert.Equal(t, i+1, q.Ord)
		assert.Equal(t, map[string]string{"A": "first", "B": "second"}, q.Options)
		assert.Equal(t, in.Questions[i].CorrectAnswer, q.CorrectAnswer)
	}

	_, err = store.GetTest(ctx, "nope")
	assert.ErrorIs(t, err, exam.ErrTestNotFound)
}

func TestSQLStore_ListTestsScopesToViewer(t *testing.T) {
	ctx := context.Background()
	store := exam.NewSQLStore(openTestDB(t))

	require.NoError(t, store.CreateTest(ctx, standardTest("t1", "A", "B")))

	mine := standardTest("r1", "A")
	mine.Kind = exam.KindReview
	mine.UserID = "u1"
	mine.Name = "Review"
	require.NoError(t, store.CreateTest(ctx, mine))

	theirs := standardTest("r2", "A")
	theirs.Kind = exam.KindReview
	theirs.UserID = "u2"
	require.NoError(t, store.CreateTest(ctx, theirs))

	list, err := store.ListTests(ctx, exam.ListOpts{ViewerID: "u1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	byID := map[string]exam.TestSummary{}
	for _, ts := range list {
		byID[ts.ID] = ts
	}
	assert.Equal(t, 2, byID["t1"].QuestionCount)
	assert.Equal(t, 1, byID["r1"].QuestionCount)
	assert.NotContains(t, byID, "r2")
}

func TestSQLStore_AttemptRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := exam.NewSQLStore(openTestDB(t))
	require.NoError(t, store.CreateTest(ctx, standardTest("t1", "A", "B")))

	a := attemptRow("a1", "u1", "t1", 2000,
		exam.Outcome{QuestionID: "t1-q1", AnswerGiven: "A", Correct: true},
		exam.Outcome{QuestionID: "t1-q2", AnswerGiven: "X", Correct: false},
	)
	a.Score = 50
	require.NoError(t, store.InsertAttempt(ctx, a))

	got, err := store.GetAttempt(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 50, got.Score)
	assert.Equal(t, int64(2000), got.CompletedAt)
	require.Len(t, got.Outcomes, 2)
	assert.True(t, got.Outcomes[0].Correct)
	assert.False(t, got.Outcomes[1].Correct)
	assert.False(t, got.Outcomes[1].Retired)
	assert.Equal(t, "X", got.Outcomes[1].AnswerGiven)

	_, err = store.GetAttempt(ctx, "nope")
	assert.ErrorIs(t, err, exam.ErrAttemptNotFound)

	list, err := store.ListAttempts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID)
	assert.Equal(t, "Theory t1", list[0].TestName)
}

func TestSQLStore_OutstandingMistakes(t *testing.T) {
	ctx := context.Background()
	store := exam.NewSQLStore(openTestDB(t))
	require.NoError(t, store.CreateTest(ctx, standardTest("t1", "A", "B", "C")))

	review := standardTest("r1", "A")
	review.Kind = exam.KindReview
	review.UserID = "u1"
	require.NoError(t, store.CreateTest(ctx, review))

	// Older attempt: q1 wrong, q2 blank, q3 correct.
	older := attemptRow("a1", "u1", "t1", 1000,
		exam.Outcome{QuestionID: "t1-q1", AnswerGiven: "X"},
		exam.Outcome{QuestionID: "t1-q2", AnswerGiven: ""},
		exam.Outcome{QuestionID: "t1-q3", AnswerGiven: "C", Correct: true},
	)
	require.NoError(t, store.InsertAttempt(ctx, older))

	// Newer attempt: q2 wrong.
	newer := attemptRow("a2", "u1", "t1", 2000,
		exam.Outcome{QuestionID: "t1-q2", AnswerGiven: "X"},
	)
	require.NoError(t, store.InsertAttempt(ctx, newer))

	// Review attempts never feed the mistake pool.
	onReview := attemptRow("a3", "u1", "r1", 3000,
		exam.Outcome{QuestionID: "r1-q1", AnswerGiven: "X"},
	)
	require.NoError(t, store.InsertAttempt(ctx, onReview))

	// Another student's mistakes stay theirs.
	other := attemptRow("a4", "u2", "t1", 4000,
		exam.Outcome{QuestionID: "t1-q1", AnswerGiven: "X"},
	)
	require.NoError(t, store.InsertAttempt(ctx, other))

	ms, err := store.OutstandingMistakes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, ms, 2)
	// Most recent attempt first, blanks excluded.
	assert.Equal(t, "t1-q2", ms[0].QuestionID)
	assert.Equal(t, "t1-q1", ms[1].QuestionID)
	assert.Equal(t, "B", ms[0].CorrectAnswer)
	assert.Equal(t, map[string]string{"A": "first", "B": "second"}, ms[0].Options)
}

func TestSQLStore_MarkRetiredIsMonotonic(t *testing.T) {
	ctx := context.Background()
	store := exam.NewSQLStore(openTestDB(t))
	require.NoError(t, store.CreateTest(ctx, standardTest("t1", "A", "B")))

	a := attemptRow("a1", "u1", "t1", 1000,
		exam.Outcome{QuestionID: "t1-q1", AnswerGiven: "X"},
		exam.Outcome{QuestionID: "t1-q2", AnswerGiven: "X"},
	)
	require.NoError(t, store.InsertAttempt(ctx, a))

	ids, err := store.OutstandingBySource(ctx, "u1", []string{"t1-q1"})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	n, err := store.MarkRetired(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Already-retired rows are not counted again.
	n, err = store.MarkRetired(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// The retired mistake is gone; its sibling remains.
	ms, err := store.OutstandingMistakes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "t1-q2", ms[0].QuestionID)

	ids, err = store.OutstandingBySource(ctx, "u1", []string{"t1-q1", "t1-q2"})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	ids, err = store.OutstandingBySource(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSQLStore_DeleteReviewTestsCascades(t *testing.T) {
	ctx := context.Background()
	dbh := openTestDB(t)
	store := exam.NewSQLStore(dbh)

	require.NoError(t, store.CreateTest(ctx, standardTest("t1", "A")))
	review := standardTest("r1", "A", "B")
	review.Kind = exam.KindReview
	review.UserID = "u1"
	require.NoError(t, store.CreateTest(ctx, review))

	require.NoError(t, store.DeleteReviewTests(ctx, "u1"))

	_, err := store.GetTest(ctx, "r1")
	assert.ErrorIs(t, err, exam.ErrTestNotFound)

	var n int
	require.NoError(t, dbh.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE test_id='r1'`).Scan(&n))
	assert.Equal(t, 0, n, "cloned questions must go with the review test")

	got, err := store.GetTest(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, got.Questions, 1)
}

func TestSQLStore_UserStats(t *testing.T) {
	ctx := context.Background()
	store := exam.NewSQLStore(openTestDB(t))
	require.NoError(t, store.CreateTest(ctx, standardTest("t1", "A", "B")))

	a1 := attemptRow("a1", "u1", "t1", 1000,
		exam.Outcome{QuestionID: "t1-q1", AnswerGiven: "A", Correct: true},
		exam.Outcome{QuestionID: "t1-q2", AnswerGiven: "X"},
	)
	a1.Score = 50
	require.NoError(t, store.InsertAttempt(ctx, a1))

	a2 := attemptRow("a2", "u1", "t1", 2000,
		exam.Outcome{QuestionID: "t1-q1", AnswerGiven: "A", Correct: true},
		exam.Outcome{QuestionID: "t1-q2", AnswerGiven: "B", Correct: true},
	)
	a2.Score = 100
	require.NoError(t, store.InsertAttempt(ctx, a2))

	st, err := store.UserStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalAttempts)
	assert.Equal(t, 75, st.AverageScore)
	assert.Equal(t, 120, st.TotalTimeSec)
	assert.Equal(t, 1, st.OutstandingMistakes)

	empty, err := store.UserStats(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalAttempts)
	assert.Equal(t, 0, empty.AverageScore)
}
