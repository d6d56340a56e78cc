package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	bookingserrors "rentabike/internal/bookings/errors"
	apperrors "rentabike/pkg/errors"
	"rentabike/pkg/model"
)

const (
	lockKeyPrefix      = "booking_lock_"
	lockRetryInterval  = 50 * time.Millisecond
	lockReleaseTimeout = 5 * time.Second
	defaultLockTTL     = 10 * time.Second
)

type bikeLock struct {
	id     string
	owner  string
	bikeID string
	// deadline leaves a quarter of the TTL for the commit to land before
	// anyone may reclaim the lock.
	deadline time.Time
}

// withBikeLock runs fn in a transaction while holding the bike's lock. The
// transaction first fences the lock document, so a holder whose lock was
// reclaimed aborts instead of committing alongside the new holder, and it
// runs on a deadline that ends before the lock expires.
func (s *bookingService) withBikeLock(ctx context.Context, bikeID string, fn func(txCtx context.Context) error) error {
	lock, err := s.acquireBikeLock(ctx, bikeID)
	if err != nil {
		return err
	}
	defer s.releaseBikeLock(ctx, lock)

	heldCtx, cancel := context.WithDeadline(ctx, lock.deadline)
	defer cancel()

	err = s.repo.ExecuteTransaction(heldCtx, func(txCtx context.Context) error {
		if err := s.lockRepo.Fence(txCtx, lock.id, lock.owner); err != nil {
			if errors.Is(err, bookingserrors.ErrLockNotOwned) {
				s.cfg.Log.Warn("Bike lock lost before write", "bike_id", bikeID)
				return lockBusy(bikeID)
			}
			return apperrors.Infrastructure("Failed to confirm booking lock", err)
		}
		return fn(txCtx)
	})
	if err != nil && ctx.Err() == nil && errors.Is(heldCtx.Err(), context.DeadlineExceeded) {
		s.cfg.Log.Warn("Bike lock expired before write committed", "bike_id", bikeID, "error", err)
		return lockBusy(bikeID)
	}
	return err
}

func lockBusy(bikeID string) error {
	return apperrors.Conflict("Bike is being booked by another request, please try again").
		WithDetails(map[string]any{"bike_id": bikeID})
}

// acquireBikeLock serializes check-then-insert for one bike across every
// service replica. The lock row expires on its own if the holder dies, and
// waiters reclaim it once it has.
func (s *bookingService) acquireBikeLock(ctx context.Context, bikeID string) (*bikeLock, error) {
	lockID := lockKeyPrefix + bikeID
	owner := uuid.NewString()

	ttl := s.cfg.BookingLockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.BookingLockWait)
	defer cancel()

	for {
		now := time.Now().UTC()
		err := s.lockRepo.Acquire(ctx, &model.BookingLock{
			ID:        lockID,
			Owner:     owner,
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
		})
		if err == nil {
			s.cfg.Log.Debug("Bike lock acquired", "bike_id", bikeID, "owner", owner)
			return &bikeLock{
				id:       lockID,
				owner:    owner,
				bikeID:   bikeID,
				deadline: now.Add(ttl - ttl/4),
			}, nil
		}
		if !errors.Is(err, bookingserrors.ErrLockHeld) {
			s.cfg.Log.Error("Failed to acquire bike lock", "bike_id", bikeID, "error", err)
			return nil, apperrors.Infrastructure("Failed to acquire booking lock", err)
		}

		reclaimed, err := s.lockRepo.ReclaimExpired(ctx, lockID, now)
		if err != nil {
			s.cfg.Log.Warn("Failed to reclaim expired bike lock", "bike_id", bikeID, "error", err)
		}
		if reclaimed {
			s.cfg.Log.Warn("Reclaimed expired bike lock", "bike_id", bikeID)
			continue
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, apperrors.Timeout("Request cancelled while waiting for booking lock")
			}
			s.cfg.Log.Info("Timed out waiting for bike lock", "bike_id", bikeID)
			return nil, lockBusy(bikeID)
		case <-time.After(lockRetryInterval):
		}
	}
}

// Release runs on its own deadline so a cancelled request still frees the bike.
func (s *bookingService) releaseBikeLock(ctx context.Context, lock *bikeLock) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseTimeout)
	defer cancel()

	if err := s.lockRepo.Release(releaseCtx, lock.id, lock.owner); err != nil {
		if errors.Is(err, bookingserrors.ErrLockNotOwned) {
			s.cfg.Log.Warn("Bike lock was reclaimed before release", "bike_id", lock.bikeID)
			return
		}
		s.cfg.Log.Error("Failed to release bike lock", "bike_id", lock.bikeID, "error", err)
	}
}
