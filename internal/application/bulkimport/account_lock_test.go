package bulkimport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalAccountLockerDropsIdleSlots(t *testing.T) {
	t.Parallel()

	locker := NewLocalAccountLocker()
	release, err := locker.Acquire(context.Background(), 10)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, 10)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, locker.size())

	release()
	release()
	assert.Zero(t, locker.size())

	for id := int64(1); id <= 50; id++ {
		r, err := locker.Acquire(context.Background(), id)
		require.NoError(t, err)
		r()
	}
	assert.Zero(t, locker.size())
}
