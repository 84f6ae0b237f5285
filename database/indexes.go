package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// IndexModels lists the indexes each collection needs. Uniqueness of
// usernames, emails, likes and subscriptions relies on them.
func IndexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "fullName", Value: 1}}},
			{Keys: bson.D{{Key: "resetPasswordToken", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		VideosCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		PlaylistsCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "videos._id", Value: 1}}},
		},
		CommentsCollection: {
			{Keys: bson.D{{Key: "video", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "parent", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		LikesCollection: {
			{
				Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "video", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"video": bson.M{"$exists": true}}),
			},
			{
				Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "comment", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"comment": bson.M{"$exists": true}}),
			},
			{Keys: bson.D{{Key: "video", Value: 1}}},
			{Keys: bson.D{{Key: "comment", Value: 1}}},
		},
		SubscriptionsCollection: {
			{Keys: bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "channel", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		ActionLogsCollection: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "source", Value: 1}, {Key: "severity", Value: 1}}},
		},
	}
}

func (d *DB) EnsureIndexes(ctx context.Context) error {
	for name, models := range IndexModels() {
		if _, err := d.OpenCollection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
