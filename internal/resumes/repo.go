package resumes

import "context"

// Repo defines persistence operations for resumes.
type Repo interface {
	// Create stores r and returns its id. An empty r.ID is assigned by the store.
	Create(ctx context.Context, r Resume) (string, error)
	// ListByUser returns the user's resumes, newest upload first.
	ListByUser(ctx context.Context, userID string) ([]Resume, error)
	GetByID(ctx context.Context, id string) (Resume, error)
	DeleteByID(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
