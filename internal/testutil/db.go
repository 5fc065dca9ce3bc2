// Package testutil holds helpers shared by package tests: a per-test MongoDB
// database, template boot and CSRF-wrapped handlers.
package testutil

import (
	"context"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultTestMongoURI is used unless STRATASCHED_TEST_MONGO_URI is set.
const DefaultTestMongoURI = "mongodb://localhost:27017"

// dbPrefix plus the sanitized test name must fit MongoDB's 63 byte limit.
const (
	dbPrefix   = "stratasched_test_"
	maxNameLen = 63 - len(dbPrefix)
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error

	unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

func mongoURI() string {
	if v := os.Getenv("STRATASCHED_TEST_MONGO_URI"); v != "" {
		return v
	}
	return DefaultTestMongoURI
}

func sharedClient() (*mongo.Client, error) {
	clientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(mongoURI()).
			SetMaxPoolSize(50).
			SetConnectTimeout(5 * time.Second).
			SetServerSelectionTimeout(5 * time.Second)

		client, clientErr = mongo.Connect(ctx, opts)
		if clientErr != nil {
			return
		}
		clientErr = client.Ping(ctx, nil)
	})
	return client, clientErr
}

// DBName returns the database name SetupTestDB uses for a test.
func DBName(testName string) string {
	name := unsafeName.ReplaceAllString(testName, "_")
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return dbPrefix + name
}

// SetupTestDB returns an empty database named after the test and dropped on
// cleanup. Tests that need indexes ensure them through their store. The
// test is skipped when MongoDB is not reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	c, err := sharedClient()
	if err != nil {
		t.Skipf("MongoDB not available at %s: %v", mongoURI(), err)
	}
	db := c.Database(DBName(t.Name()))

	ctx, cancel := TestContext()
	defer cancel()
	if err := db.Drop(ctx); err != nil {
		t.Fatalf("drop test database: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("drop test database on cleanup: %v", err)
		}
	})
	return db
}

// TestContext bounds a test's database calls.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
