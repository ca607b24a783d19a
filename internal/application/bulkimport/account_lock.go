package bulkimport

import (
	"context"
	"sync"
)

// AccountLocker serializes executions that spend one corporate account's
// credits. Acquire blocks until the lock is held or ctx is done.
type AccountLocker interface {
	Acquire(ctx context.Context, accountID int64) (release func(), err error)
}

type accountSlot struct {
	ch    chan struct{}
	users int
}

// LocalAccountLocker is an in-process AccountLocker for single-instance
// deployments. A slot lives only while someone holds or waits for it.
type LocalAccountLocker struct {
	mu    sync.Mutex
	slots map[int64]*accountSlot
}

func NewLocalAccountLocker() *LocalAccountLocker {
	return &LocalAccountLocker{slots: make(map[int64]*accountSlot)}
}

func (l *LocalAccountLocker) Acquire(ctx context.Context, accountID int64) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[accountID]
	if !ok {
		slot = &accountSlot{ch: make(chan struct{}, 1)}
		l.slots[accountID] = slot
	}
	slot.users++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.leave(accountID, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.leave(accountID, slot)
		})
	}, nil
}

func (l *LocalAccountLocker) leave(accountID int64, slot *accountSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.users--
	if slot.users == 0 {
		delete(l.slots, accountID)
	}
}

func (l *LocalAccountLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
