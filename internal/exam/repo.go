package exam

import "context"

type ListOpts struct {
	// ViewerID scopes the listing: standard tests are visible to everyone,
	// review/custom tests only to their owner.
	ViewerID string
}

// Store is the persistence surface for tests, attempts and the outcome
// ledger. All writes are atomic per call; MarkRetired is idempotent.
type Store interface {
	GetTest(ctx context.Context, id string) (Test, error)
	ListTests(ctx context.Context, opts ListOpts) ([]TestSummary, error)
	CreateTest(ctx context.Context, t Test) error
	DeleteReviewTests(ctx context.Context, userID string) error

	// InsertAttempt persists the attempt and every outcome in one
	// transaction; a failure leaves no trace of the attempt.
	InsertAttempt(ctx context.Context, a Attempt) error
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ListAttempts(ctx context.Context, userID string) ([]AttemptSummary, error)

	// OutstandingMistakes returns the viewer's non-blank, incorrect,
	// not-yet-retired outcomes across standard-test attempts, most recent
	// attempt first.
	OutstandingMistakes(ctx context.Context, userID string) ([]Mistake, error)

	// OutstandingBySource resolves outstanding outcome ids for the given
	// standard question ids.
	OutstandingBySource(ctx context.Context, userID string, questionIDs []string) ([]string, error)

	// MarkRetired flips the retired flag on the named outcomes. Rows already
	// retired are skipped; the count of rows actually transitioned is
	// returned.
	MarkRetired(ctx context.Context, outcomeIDs []string) (int64, error)

	UserStats(ctx context.Context, userID string) (UserStats, error)
}
