package resumes

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"resume-analyzer/internal/shared/retry"
	"resume-analyzer/internal/shared/telemetry"
)

// DefaultStoreTimeout bounds a single record store call.
const DefaultStoreTimeout = 10 * time.Second

// RetryingRepo bounds every call to Repo with a timeout and retries transient failures.
type RetryingRepo struct {
	Repo    Repo
	Timeout time.Duration
	Policy  retry.Policy
}

// NewRetryingRepo wraps repo with the default retry policy.
func NewRetryingRepo(repo Repo, timeout time.Duration) *RetryingRepo {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &RetryingRepo{Repo: repo, Timeout: timeout, Policy: retry.DefaultPolicy}
}

// Create assigns the id up front so a retried insert targets the same row.
func (r *RetryingRepo) Create(ctx context.Context, res Resume) (string, error) {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	return call(ctx, r, "create", func(ctx context.Context) (string, error) {
		return r.Repo.Create(ctx, res)
	})
}

func (r *RetryingRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	return call(ctx, r, "list_by_user", func(ctx context.Context) ([]Resume, error) {
		return r.Repo.ListByUser(ctx, userID)
	})
}

func (r *RetryingRepo) GetByID(ctx context.Context, id string) (Resume, error) {
	return call(ctx, r, "get_by_id", func(ctx context.Context) (Resume, error) {
		return r.Repo.GetByID(ctx, id)
	})
}

// DeleteByID treats NotFound on a retry as success: the failed attempt may have deleted the row
// before its acknowledgement was lost.
func (r *RetryingRepo) DeleteByID(ctx context.Context, id string) error {
	attempt := 0
	_, err := call(ctx, r, "delete_by_id", func(ctx context.Context) (struct{}, error) {
		attempt++
		err := r.Repo.DeleteByID(ctx, id)
		if attempt > 1 && errors.Is(err, ErrNotFound) {
			return struct{}{}, nil
		}
		return struct{}{}, err
	})
	return err
}

// Ping is not retried; health checks want the current answer.
func (r *RetryingRepo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	return r.Repo.Ping(ctx)
}

func call[T any](ctx context.Context, r *RetryingRepo, op string, fn func(context.Context) (T, error)) (T, error) {
	return retry.Do(ctx, r.Policy, storeRetryable, func(attempt int, err error) {
		telemetry.Warn("store.retry", map[string]any{
			"op":      op,
			"attempt": attempt,
			"error":   err,
		})
	}, func(ctx context.Context) (T, error) {
		callCtx, cancel := context.WithTimeout(ctx, r.Timeout)
		defer cancel()
		return fn(callCtx)
	})
}

func storeRetryable(err error) bool {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
		return false
	}
	return retry.IsTransient(err)
}

var _ Repo = (*RetryingRepo)(nil)
