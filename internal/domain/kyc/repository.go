package kyc

import "context"

type Repository interface {
	// Save upserts the record by user id; the three submission stages mutate
	// the same row additively.
	Save(ctx context.Context, r *Record) error
	GetByUserID(ctx context.Context, userID string) (*Record, error)
}
