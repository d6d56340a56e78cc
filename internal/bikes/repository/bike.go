package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bikeserrors "rentabike/internal/bikes/errors"
	"rentabike/pkg/config"
	mongotx "rentabike/pkg/db/mongo"
	"rentabike/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bikes"
)

type mongoBikeRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type BikeRepository interface {
	Create(ctx context.Context, bike *model.Bike) error
	FindByID(ctx context.Context, id string) (*model.Bike, error)
	// FindAll returns bikes newest first. A zero limit returns every match.
	FindAll(ctx context.Context, filter model.BikeFilter, limit int, offset int64) ([]*model.Bike, error)
	Count(ctx context.Context, filter model.BikeFilter) (int64, error)
	Update(ctx context.Context, id string, set bson.M) (*model.Bike, error)
	Delete(ctx context.Context, id string) error
}

func NewMongoBikeRepository(cfg *config.Config) BikeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBikeRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBikeRepository) Create(ctx context.Context, bike *model.Bike) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	bike.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, bike)
	if err != nil {
		return fmt.Errorf("failed to create bike: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		bike.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBikeRepository) FindByID(ctx context.Context, id string) (*model.Bike, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bikeserrors.ErrInvalidID, id)
	}

	var bike model.Bike
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&bike)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", bikeserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find bike: %w", err)
	}
	return &bike, nil
}

func (r *mongoBikeRepository) FindAll(ctx context.Context, filter model.BikeFilter, limit int, offset int64) ([]*model.Bike, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(offset)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bikes: %w", err)
	}
	defer cursor.Close(ctx)

	bikes := []*model.Bike{}
	if err = cursor.All(ctx, &bikes); err != nil {
		return nil, fmt.Errorf("failed to decode bikes: %w", err)
	}

	return bikes, nil
}

func (r *mongoBikeRepository) Count(ctx context.Context, filter model.BikeFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bikes: %w", err)
	}
	return count, nil
}

func (r *mongoBikeRepository) Update(ctx context.Context, id string, set bson.M) (*model.Bike, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bikeserrors.ErrInvalidID, id)
	}

	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Bike
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", bikeserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update bike: %w", err)
	}
	return &updated, nil
}

// Delete removes the bike document. Bookings keep their bike_id and are
// shown without bike details afterwards.
func (r *mongoBikeRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bikeserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete bike: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", bikeserrors.ErrNotFound, id)
	}
	return nil
}

func buildFilter(f model.BikeFilter) bson.M {
	filter := bson.M{}
	if f.AvailableOnly {
		filter["available"] = true
	}
	return filter
}
