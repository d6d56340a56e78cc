package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingsrepo "rentabike/internal/bookings/repository"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "rentabike_test"
	ConnectionTimeout   = 10 * time.Second
)

// Store is direct access to the database the service under test writes to,
// used to seed bikes and to wipe bookings between tests.
type Store struct {
	db *mongo.Database
}

func OpenStore(t *testing.T, uri, dbName string) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}
	return &Store{db: client.Database(dbName)}
}

// Reset empties every collection but keeps the validators and indexes
// the migrations installed, including the bike lock TTL index.
func (s *Store) Reset(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	names, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}
	for _, name := range names {
		if strings.HasPrefix(name, "system.") {
			continue
		}
		if _, err := s.db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to empty %s: %v", name, err)
		}
	}
}

// HeldLocks counts bike locks still present; a finished request must leave none.
func (s *Store) HeldLocks(t *testing.T) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := s.db.Collection(bookingsrepo.LockCollectionName).CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("failed to count bike locks: %v", err)
	}
	return n
}

func (s *Store) Close(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.db.Client().Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}
