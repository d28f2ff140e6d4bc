package credit

import "context"

type ScoreRepository interface {
	Save(ctx context.Context, s *Score) error
	GetByUserID(ctx context.Context, userID string) (*Score, error)
	// GetByUserIDForUpdate locks the row so concurrent rewards to the same
	// user serialize inside the enclosing transaction.
	GetByUserIDForUpdate(ctx context.Context, userID string) (*Score, error)
}

type StatsRepository interface {
	Save(ctx context.Context, s *Stats) error
	GetByUserID(ctx context.Context, userID string) (*Stats, error)
	GetByUserIDForUpdate(ctx context.Context, userID string) (*Stats, error)
}
