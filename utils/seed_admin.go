package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/McTechie/tubecafe-backend/config"
	"github.com/McTechie/tubecafe-backend/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// AdminSeed is the upsert that creates the admin account on first boot.
// ok is false when any of username, email or password is missing.
func AdminSeed(admin config.Admin, passwordHash string, now time.Time) (filter, update bson.M, ok bool) {
	username := FoldIdentifier(admin.Username)
	email := FoldIdentifier(admin.Email)
	if username == "" || email == "" || passwordHash == "" {
		return nil, nil, false
	}

	filter = bson.M{"$or": bson.A{bson.M{"email": email}, bson.M{"username": username}}}
	update = bson.M{"$setOnInsert": models.User{
		Username:     username,
		Email:        email,
		Password:     passwordHash,
		FullName:     admin.FullName,
		Avatar:       admin.Avatar,
		WatchHistory: []bson.ObjectID{},
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}}
	return filter, update, true
}

// SeedAdminUser inserts the configured admin unless an account with the same
// username or email exists.
func SeedAdminUser(ctx context.Context, usersCol *mongo.Collection, admin config.Admin) error {
	log := logrus.WithField("source", "db")
	if admin.Password == "" {
		log.Info("admin seeding skipped: ADMIN_PASSWORD not set")
		return nil
	}

	hash, err := HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	filter, update, ok := AdminSeed(admin, hash, time.Now().UTC())
	if !ok {
		log.Info("admin seeding skipped: ADMIN_USERNAME or ADMIN_EMAIL not set")
		return nil
	}

	res, err := usersCol.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if res.UpsertedCount == 1 {
		log.WithField("email", admin.Email).Info("admin user seeded")
	}
	return nil
}
