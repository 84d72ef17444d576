package resumes

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer/internal/shared/retry"
	"resume-analyzer/internal/shared/telemetry"
)

type flakyRepo struct {
	*MemoryRepo
	failures int
	creates  []string
}

func (r *flakyRepo) Create(ctx context.Context, res Resume) (string, error) {
	r.creates = append(r.creates, res.ID)
	if r.failures > 0 {
		r.failures--
		return "", errors.New("write tcp: connection reset by peer")
	}
	return r.MemoryRepo.Create(ctx, res)
}

// lostAckRepo deletes the row and then reports a dropped connection, once.
type lostAckRepo struct {
	*MemoryRepo
	drops   int
	deletes int
}

func (r *lostAckRepo) DeleteByID(ctx context.Context, id string) error {
	r.deletes++
	err := r.MemoryRepo.DeleteByID(ctx, id)
	if err == nil && r.drops > 0 {
		r.drops--
		return errors.New("read tcp: connection reset by peer")
	}
	return err
}

func newRetrying(inner Repo) *RetryingRepo {
	r := NewRetryingRepo(inner, time.Second)
	r.Policy = retry.Policy{MaxTries: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond}
	return r
}

func TestRetryingRepoRetriesCreateWithStableID(t *testing.T) {
	restore := telemetry.SetOutput(&bytes.Buffer{})
	defer restore()

	inner := &flakyRepo{MemoryRepo: NewMemoryRepo(), failures: 2}
	id, err := newRetrying(inner).Create(context.Background(), Resume{UserID: "u1"})
	require.NoError(t, err)

	require.Len(t, inner.creates, 3)
	assert.Equal(t, id, inner.creates[0])
	assert.Equal(t, inner.creates[0], inner.creates[2])
}

func TestRetryingRepoDeleteSurvivesLostAcknowledgement(t *testing.T) {
	restore := telemetry.SetOutput(&bytes.Buffer{})
	defer restore()

	inner := &lostAckRepo{MemoryRepo: NewMemoryRepo(), drops: 1}
	id, err := inner.Create(context.Background(), Resume{UserID: "u1", UploadedAt: time.Now()})
	require.NoError(t, err)

	require.NoError(t, newRetrying(inner).DeleteByID(context.Background(), id))
	assert.Equal(t, 2, inner.deletes)

	_, err = inner.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRetryingRepoDoesNotRetryNotFound(t *testing.T) {
	repo := newRetrying(NewMemoryRepo())

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteByID(context.Background(), "missing"), ErrNotFound)
}

func TestRetryingRepoGivesUp(t *testing.T) {
	restore := telemetry.SetOutput(&bytes.Buffer{})
	defer restore()

	inner := &flakyRepo{MemoryRepo: NewMemoryRepo(), failures: 10}
	_, err := newRetrying(inner).Create(context.Background(), Resume{UserID: "u1"})
	require.Error(t, err)
	assert.Len(t, inner.creates, 3)
}
