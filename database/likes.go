package database

import (
	"context"
	"fmt"

	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type LikeRepository struct {
	col *mongo.Collection
}

func NewLikeRepository(d *DB) *LikeRepository {
	return &LikeRepository{col: d.OpenCollection(LikesCollection)}
}

func likeFilter(by bson.ObjectID, kind models.ResourceType, target bson.ObjectID) bson.M {
	filter := bson.M{string(kind): target}
	if !by.IsZero() {
		filter["likedBy"] = by
	}
	return filter
}

func (r *LikeRepository) Like(ctx context.Context, like models.Like) error {
	if _, err := r.col.InsertOne(ctx, like); err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

func (r *LikeRepository) Unlike(ctx context.Context, by bson.ObjectID, kind models.ResourceType, target bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, likeFilter(by, kind, target))
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *LikeRepository) Count(ctx context.Context, kind models.ResourceType, target bson.ObjectID) (int64, error) {
	n, err := r.col.CountDocuments(ctx, likeFilter(bson.NilObjectID, kind, target))
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}
