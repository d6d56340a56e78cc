package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "rentabike/internal/bookings/errors"
	"rentabike/pkg/config"
	mongotx "rentabike/pkg/db/mongo"
	"rentabike/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Booking_locks"

// BookingLockRepository stores advisory locks keyed by bike.
type BookingLockRepository interface {
	// Acquire inserts the lock, returning ErrLockHeld if one already exists.
	Acquire(ctx context.Context, lock *model.BookingLock) error
	// Release deletes the lock only if owner still holds it.
	Release(ctx context.Context, lockID, owner string) error
	// ReclaimExpired deletes the lock if it expired before now.
	ReclaimExpired(ctx context.Context, lockID string, now time.Time) (bool, error)
	// Fence stamps the lock from inside the holder's transaction, returning
	// ErrLockNotOwned if owner no longer holds it.
	Fence(ctx context.Context, lockID, owner string) error
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoBookingLockRepository) Acquire(ctx context.Context, lock *model.BookingLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if lock.CreatedAt.IsZero() {
		lock.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	return nil
}

func (r *mongoBookingLockRepository) Release(ctx context.Context, lockID, owner string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	if result.DeletedCount == 0 {
		return bookingserrors.ErrLockNotOwned
	}
	return nil
}

func (r *mongoBookingLockRepository) ReclaimExpired(ctx context.Context, lockID string, now time.Time) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        lockID,
		"expires_at": bson.M{"$lt": now},
	})
	if err != nil {
		return false, fmt.Errorf("failed to reclaim booking lock: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *mongoBookingLockRepository) Fence(ctx context.Context, lockID, owner string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": lockID, "owner": owner},
		bson.M{"$currentDate": bson.M{"fenced_at": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to fence booking lock: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrLockNotOwned
	}
	return nil
}
