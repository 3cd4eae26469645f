package exam

// TestKind distinguishes shared exams from per-student generated ones.
type TestKind string

const (
	KindStandard TestKind = "STANDARD"
	KindReview   TestKind = "REVIEW"
	KindCustom   TestKind = "CUSTOM"
)

type Question struct {
	ID            string            `json:"id"`
	TestID        string            `json:"test_id"`
	Ord           int               `json:"ord"`
	Prompt        string            `json:"prompt"`
	Options       map[string]string `json:"options"` // label -> text
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	Explanation   string            `json:"explanation,omitempty"`

	// SourceQuestionID links a REVIEW clone back to the standard question
	// it was copied from. Empty on standard questions.
	SourceQuestionID string `json:"source_question_id,omitempty"`
}

type Test struct {
	ID        string     `json:"id"`
	Kind      TestKind   `json:"kind"`
	UserID    string     `json:"user_id,omitempty"` // owner; empty for STANDARD
	Name      string     `json:"name"`
	CreatedAt int64      `json:"created_at"`
	Questions []Question `json:"questions,omitempty"`
}

// Attempt is one graded submission. It is written once, together with all
// of its outcomes; afterwards only the outcomes' retired flag ever changes.
type Attempt struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	TestID       string    `json:"test_id"`
	Score        int       `json:"score"` // 0-100
	TimeSpentSec int       `json:"time_spent_sec,omitempty"`
	CompletedAt  int64     `json:"completed_at"`
	Outcomes     []Outcome `json:"outcomes,omitempty"`
}

// Outcome records correctness of one answered question within one attempt.
// Retired means the mistake has since been mastered; the flag only ever
// moves from false to true.
type Outcome struct {
	ID          string `json:"id"`
	AttemptID   string `json:"attempt_id"`
	QuestionID  string `json:"question_id"`
	Ord         int    `json:"ord"`
	AnswerGiven string `json:"answer_given"`
	Correct     bool   `json:"correct"`
	Retired     bool   `json:"retired"`
}

// Mistake is an outstanding wrong answer joined with the content of the
// question it was given for, as served by the ledger to the review builder.
type Mistake struct {
	OutcomeID     string            `json:"outcome_id"`
	QuestionID    string            `json:"question_id"`
	Prompt        string            `json:"prompt"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

type TestSummary struct {
	ID            string   `json:"id"`
	Kind          TestKind `json:"kind"`
	UserID        string   `json:"user_id,omitempty"`
	Name          string   `json:"name"`
	QuestionCount int      `json:"question_count"`
	CreatedAt     int64    `json:"created_at"`
}

type AttemptSummary struct {
	ID           string   `json:"id"`
	TestID       string   `json:"test_id"`
	TestName     string   `json:"test_name"`
	TestKind     TestKind `json:"test_kind"`
	Score        int      `json:"score"`
	TimeSpentSec int      `json:"time_spent_sec,omitempty"`
	CompletedAt  int64    `json:"completed_at"`
}

type UserStats struct {
	TotalAttempts       int `json:"total_attempts"`
	AverageScore        int `json:"average_score"`
	TotalTimeSec        int `json:"total_time_sec"`
	OutstandingMistakes int `json:"outstanding_mistakes"`
}
