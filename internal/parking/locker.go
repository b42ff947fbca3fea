package parking

import (
	"context"
	"sync"
)

// Locker serialises work on a key. The returned unlock func must be called
// exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

func vehicleLockKey(registration string) string {
	return "vehicle:" + registration
}

func spotsLockKey(category VehicleCategory) string {
	return "spots:" + category.String()
}

// KeyedMutex is an in-process Locker. The zero value is ready to use.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{}
}

func (km *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	km.mu.Lock()
	if km.locks == nil {
		km.locks = make(map[string]*keyedLock)
	}
	l, ok := km.locks[key]
	if !ok {
		l = &keyedLock{ch: make(chan struct{}, 1)}
		km.locks[key] = l
	}
	l.refs++
	km.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-l.ch
				km.release(key, l)
			})
		}, nil
	case <-ctx.Done():
		km.release(key, l)
		return nil, ctx.Err()
	}
}

func (km *KeyedMutex) release(key string, l *keyedLock) {
	km.mu.Lock()
	defer km.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(km.locks, key)
	}
}

// held reports how many keys currently have holders or waiters.
func (km *KeyedMutex) held() int {
	km.mu.Lock()
	defer km.mu.Unlock()
	return len(km.locks)
}
