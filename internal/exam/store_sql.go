package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, COALESCE(user_id,''), name, created_at FROM tests WHERE id=$1`, id)
	var t Test
	if err := row.Scan(&t.ID, &t.Kind, &t.UserID, &t.Name, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, ErrTestNotFound
		}
		return Test{}, fmt.Errorf("get test: %w", err)
	}
	qs, err := s.questionsForTest(ctx, t.ID)
	if err != nil {
		return Test{}, err
	}
	t.Questions = qs
	return t, nil
}

func (s *SQLStore) questionsForTest(ctx context.Context, testID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, test_id, ord, prompt, options_json, correct_answer, explanation, COALESCE(source_question_id,'')
		 FROM questions WHERE test_id=$1 ORDER BY ord`, testID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		var oj string
		if err := rows.Scan(&q.ID, &q.TestID, &q.Ord, &q.Prompt, &oj, &q.CorrectAnswer, &q.Explanation, &q.SourceQuestionID); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
			return nil, fmt.Errorf("decode options for question %s: %w", q.ID, err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListTests(ctx context.Context, opts ListOpts) ([]TestSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.kind, COALESCE(t.user_id,''), t.name, t.created_at, COUNT(q.id)
		 FROM tests t
		 LEFT JOIN questions q ON q.test_id = t.id
		 WHERE t.kind=$1 OR t.user_id=$2
		 GROUP BY t.id, t.kind, t.user_id, t.name, t.created_at
		 ORDER BY t.created_at DESC, t.name`,
		string(KindStandard), opts.ViewerID)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	defer rows.Close()

	var out []TestSummary
	for rows.Next() {
		var ts TestSummary
		if err := rows.Scan(&ts.ID, &ts.Kind, &ts.UserID, &ts.Name, &ts.CreatedAt, &ts.QuestionCount); err != nil {
			return nil, fmt.Errorf("scan test summary: %w", err)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateTest(ctx context.Context, t Test) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create test: %w", err)
	}
	defer tx.Rollback()

	var owner any
	if t.UserID != "" {
		owner = t.UserID
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tests (id, kind, user_id, name, created_at) VALUES ($1,$2,$3,$4,$5)`,
		t.ID, string(t.Kind), owner, t.Name, t.CreatedAt); err != nil {
		return fmt.Errorf("insert test: %w", err)
	}
	for _, q := range t.Questions {
		oj, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("encode options: %w", err)
		}
		var src any
		if q.SourceQuestionID != "" {
			src = q.SourceQuestionID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (id, test_id, ord, prompt, options_json, correct_answer, explanation, source_question_id)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			q.ID, t.ID, q.Ord, q.Prompt, string(oj), q.CorrectAnswer, q.Explanation, src); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
	}
	return tx.Commit()
}

// DeleteReviewTests removes every review test owned by the student; their
// questions go with them via the FK cascade. Standard tests are untouched.
func (s *SQLStore) DeleteReviewTests(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM tests WHERE kind=$1 AND user_id=$2`, string(KindReview), userID)
	if err != nil {
		return fmt.Errorf("delete review tests: %w", err)
	}
	return nil
}

func (s *SQLStore) InsertAttempt(ctx context.Context, a Attempt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO attempts (id, user_id, test_id, score, time_spent_sec, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.UserID, a.TestID, a.Score, a.TimeSpentSec, a.CompletedAt); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	for _, o := range a.Outcomes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO outcomes (id, attempt_id, question_id, ord, answer_given, correct, retired)
			 VALUES ($1,$2,$3,$4,$5,$6,FALSE)`,
			o.ID, a.ID, o.QuestionID, o.Ord, o.AnswerGiven, o.Correct); err != nil {
			return fmt.Errorf("insert outcome: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, test_id, score, time_spent_sec, completed_at FROM attempts WHERE id=$1`, id)
	var a Attempt
	if err := row.Scan(&a.ID, &a.UserID, &a.TestID, &a.Score, &a.TimeSpentSec, &a.CompletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, fmt.Errorf("get attempt: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, attempt_id, question_id, ord, answer_given, correct, retired
		 FROM outcomes WHERE attempt_id=$1 ORDER BY ord`, id)
	if err != nil {
		return Attempt{}, fmt.Errorf("load outcomes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var o Outcome
		if err := rows.Scan(&o.ID, &o.AttemptID, &o.QuestionID, &o.Ord, &o.AnswerGiven, &o.Correct, &o.Retired); err != nil {
			return Attempt{}, fmt.Errorf("scan outcome: %w", err)
		}
		a.Outcomes = append(a.Outcomes, o)
	}
	return a, rows.Err()
}

func (s *SQLStore) ListAttempts(ctx context.Context, userID string) ([]AttemptSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.test_id, t.name, t.kind, a.score, a.time_spent_sec, a.completed_at
		 FROM attempts a
		 JOIN tests t ON t.id = a.test_id
		 WHERE a.user_id=$1
		 ORDER BY a.completed_at DESC, a.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptSummary
	for rows.Next() {
		var as AttemptSummary
		if err := rows.Scan(&as.ID, &as.TestID, &as.TestName, &as.TestKind, &as.Score, &as.TimeSpentSec, &as.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan attempt summary: %w", err)
		}
		out = append(out, as)
	}
	return out, rows.Err()
}

func (s *SQLStore) OutstandingMistakes(ctx context.Context, userID string) ([]Mistake, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT o.id, o.question_id, q.prompt, q.options_json, q.correct_answer, q.explanation
		 FROM outcomes o
		 JOIN attempts a ON a.id = o.attempt_id
		 JOIN tests t ON t.id = a.test_id
		 JOIN questions q ON q.id = o.question_id
		 WHERE a.user_id=$1 AND t.kind=$2
		   AND o.correct=FALSE AND o.retired=FALSE AND o.answer_given<>''
		 ORDER BY a.completed_at DESC, a.id DESC, o.ord`,
		userID, string(KindStandard))
	if err != nil {
		return nil, fmt.Errorf("outstanding mistakes: %w", err)
	}
	defer rows.Close()

	var out []Mistake
	for rows.Next() {
		var m Mistake
		var oj string
		if err := rows.Scan(&m.OutcomeID, &m.QuestionID, &m.Prompt, &oj, &m.CorrectAnswer, &m.Explanation); err != nil {
			return nil, fmt.Errorf("scan mistake: %w", err)
		}
		if err := json.Unmarshal([]byte(oj), &m.Options); err != nil {
			return nil, fmt.Errorf("decode options for question %s: %w", m.QuestionID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) OutstandingBySource(ctx context.Context, userID string, questionIDs []string) ([]string, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	ph, args := placeholders(2, questionIDs)
	q := fmt.Sprintf(
		`SELECT o.id
		 FROM outcomes o
		 JOIN attempts a ON a.id = o.attempt_id
		 JOIN tests t ON t.id = a.test_id
		 WHERE a.user_id=$1 AND t.kind='STANDARD'
		   AND o.correct=FALSE AND o.retired=FALSE
		   AND o.question_id IN (%s)`, ph)
	rows, err := s.db.QueryContext(ctx, q, append([]any{userID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("outstanding by source: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan outcome id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLStore) MarkRetired(ctx context.Context, outcomeIDs []string) (int64, error) {
	if len(outcomeIDs) == 0 {
		return 0, nil
	}
	ph, args := placeholders(1, outcomeIDs)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE outcomes SET retired=TRUE WHERE retired=FALSE AND id IN (%s)`, ph),
		args...)
	if err != nil {
		return 0, fmt.Errorf("mark retired: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLStore) UserStats(ctx context.Context, userID string) (UserStats, error) {
	var st UserStats
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(score), COALESCE(SUM(time_spent_sec),0)
		 FROM attempts WHERE user_id=$1`, userID).
		Scan(&st.TotalAttempts, &avg, &st.TotalTimeSec)
	if err != nil {
		return UserStats{}, fmt.Errorf("user stats: %w", err)
	}
	if avg.Valid {
		st.AverageScore = int(avg.Float64 + 0.5)
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT o.question_id)
		 FROM outcomes o
		 JOIN attempts a ON a.id = o.attempt_id
		 JOIN tests t ON t.id = a.test_id
		 WHERE a.user_id=$1 AND t.kind='STANDARD'
		   AND o.correct=FALSE AND o.retired=FALSE AND o.answer_given<>''`, userID).
		Scan(&st.OutstandingMistakes)
	if err != nil {
		return UserStats{}, fmt.Errorf("user stats: %w", err)
	}
	return st, nil
}

// placeholders renders $start..$start+n-1 for an IN clause.
func placeholders(start int, vals []string) (string, []any) {
	ph := make([]string, len(vals))
	args := make([]any, len(vals))
	for i, v := range vals {
		ph[i] = fmt.Sprintf("$%d", start+i)
		args[i] = v
	}
	return strings.Join(ph, ","), args
}
