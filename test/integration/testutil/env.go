package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"rentabike/pkg/auth"
)

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
	ServerPort   string
	JWTSecret    string
}

func NewTestEnv() *TestEnv {
	mongoURI := getEnv("TEST_MONGO_URI", DefaultMongoURI)
	dbName := getEnv("TEST_DB_NAME", DefaultDatabaseName)
	serverPort := getEnv("TEST_SERVER_PORT", "8080")
	serverURL := getEnv("TEST_SERVER_URL", fmt.Sprintf("http://localhost:%s", serverPort))

	return &TestEnv{
		MongoURI:     mongoURI,
		DatabaseName: dbName,
		ServerURL:    serverURL,
		ServerPort:   serverPort,
		JWTSecret:    getEnv("TEST_JWT_SECRET", "integration-secret"),
	}
}

func (e *TestEnv) Setup(t *testing.T) (*Store, *Client) {
	t.Helper()

	store := OpenStore(t, e.MongoURI, e.DatabaseName)
	store.Reset(t)

	client := NewClient(e.ServerURL)
	client.WaitForHealthy(t, DefaultHealthCheckTimeout)

	return store, client
}

// AdminToken signs a session with the secret the service under test runs with.
func (e *TestEnv) AdminToken(t *testing.T) string {
	t.Helper()
	token, _, err := auth.NewAuthenticator("", e.JWTSecret, time.Hour).Issue()
	if err != nil {
		t.Fatalf("failed to issue admin token: %v", err)
	}
	return token
}

func (e *TestEnv) Cleanup(t *testing.T, store *Store) {
	t.Helper()

	if store != nil {
		store.Reset(t)
		store.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

const (
	DefaultHealthCheckTimeout = 3 * ConnectionTimeout
)
