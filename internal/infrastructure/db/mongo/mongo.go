package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectTimeout = 5 * time.Second
	appName           = "student-records"

	// defaultTimeout bounds a single repository call.
	defaultTimeout = 5 * time.Second
)

// Config selects the deployment and the database holding users and students.
type Config struct {
	URI      string
	Database string
}

// Store owns the client shared by the user and student repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// indexer is implemented by repositories that need indexes before serving traffic.
type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// Open connects to MongoDB and waits for the primary to answer.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(connectTimeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping %s: %w", cfg.Database, err)
	}

	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// Users returns the credential repository with its unique indexes in place.
func (s *Store) Users(ctx context.Context) (*UserRepository, error) {
	repo := NewUserRepository(s.db)
	return repo, ensure(ctx, "users", repo)
}

// Students returns the academic record repository with its indexes in place.
func (s *Store) Students(ctx context.Context) (*StudentRepository, error) {
	repo := NewStudentRepository(s.db)
	return repo, ensure(ctx, "students", repo)
}

// Ping reports whether the primary is reachable. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func ensure(ctx context.Context, name string, ix indexer) error {
	if err := ix.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("mongo %s indexes: %w", name, err)
	}
	return nil
}
