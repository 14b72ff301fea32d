package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUpdater struct {
	calls   int
	flipped int64
	err     error
}

func (s *stubUpdater) UpdateOverdueStatus(context.Context) (int64, error) {
	s.calls++
	return s.flipped, s.err
}

type stubLocker struct {
	ok       bool
	err      error
	released int
	ttl      time.Duration
	name     string
}

func (s *stubLocker) TryLock(_ context.Context, name string, ttl time.Duration) (func(), bool, error) {
	s.name, s.ttl = name, ttl
	return func() { s.released++ }, s.ok, s.err
}

func TestOverdueSweepRunsUnderLock(t *testing.T) {
	updater := &stubUpdater{flipped: 3}
	locker := &stubLocker{ok: true}
	rec := &fakeRecorder{}

	sweep := NewOverdueSweep(updater, locker, time.Minute, nil).WithMetrics(rec)
	require.NoError(t, sweep.Run(context.Background()))

	assert.Equal(t, 1, updater.calls)
	assert.Equal(t, 1, locker.released)
	assert.Equal(t, "overdue-sweep", locker.name)
	assert.Equal(t, time.Minute, locker.ttl)
	assert.EqualValues(t, 3, rec.flipped)
}

func TestOverdueSweepSkipsWhenLockHeld(t *testing.T) {
	updater := &stubUpdater{}
	sweep := NewOverdueSweep(updater, &stubLocker{ok: false}, 0, nil)
	require.NoError(t, sweep.Run(context.Background()))
	assert.Zero(t, updater.calls)
}

func TestOverdueSweepRunsWhenLockerFails(t *testing.T) {
	updater := &stubUpdater{flipped: 1}
	locker := &stubLocker{err: errors.New("redis: connection refused")}
	sweep := NewOverdueSweep(updater, locker, 0, nil)
	require.NoError(t, sweep.Run(context.Background()))
	assert.Equal(t, 1, updater.calls)
	assert.Zero(t, locker.released)
}

func TestOverdueSweepWithoutLockerAgainstStore(t *testing.T) {
	r := newRegistrar(t)
	s := r.student(t, "ZS001", "110101199001011234")
	book := r.book(t, "9787111123456", 1)
	_, err := r.borrows.Borrow(context.Background(), BorrowRequest{StudentID: s.ID, BookID: book.ID})
	require.NoError(t, err)

	r.now = r.now.Add(31 * 24 * time.Hour)
	rec := &fakeRecorder{}
	sweep := NewOverdueSweep(r.borrows, nil, 0, nil).WithMetrics(rec)
	require.NoError(t, sweep.Run(context.Background()))
	require.NoError(t, sweep.Run(context.Background()))
	assert.EqualValues(t, 1, rec.flipped)
}

func TestOverdueSweepPropagatesErrors(t *testing.T) {
	updater := &stubUpdater{err: errors.New("boom")}
	sweep := NewOverdueSweep(updater, nil, 0, nil)
	assert.EqualError(t, sweep.Run(context.Background()), "boom")
}
