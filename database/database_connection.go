package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/McTechie/tubecafe-backend/config"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	UsersCollection         = "users"
	VideosCollection        = "videos"
	PlaylistsCollection     = "playlists"
	CommentsCollection      = "comments"
	LikesCollection         = "likes"
	SubscriptionsCollection = "subscriptions"
	ActionLogsCollection    = "action_logs"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict indicates a unique constraint would be violated.
	ErrConflict = errors.New("document already exists")
)

// DB owns the client and the selected database.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, cfg config.Mongo) (*DB, error) {
	if cfg.URI == "" {
		return nil, errors.New("MONGODB_URI is not set")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(timeout)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	// Send a ping to confirm a successful connection
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	logrus.WithFields(logrus.Fields{"source": "db", "database": cfg.Database}).Info("connected to MongoDB")
	return &DB{client: client, db: client.Database(cfg.Database)}, nil
}

func (d *DB) OpenCollection(collectionName string) *mongo.Collection {
	return d.db.Collection(collectionName)
}

func (d *DB) Disconnect(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// notFound maps the driver's no-documents error to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
