package database

import (
	"context"
	"fmt"
	"time"

	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type SubscriptionRepository struct {
	col *mongo.Collection
}

func NewSubscriptionRepository(d *DB) *SubscriptionRepository {
	return &SubscriptionRepository{col: d.OpenCollection(SubscriptionsCollection)}
}

func (r *SubscriptionRepository) Subscribe(ctx context.Context, subscriber, channel bson.ObjectID) error {
	now := time.Now().UTC()
	_, err := r.col.InsertOne(ctx, models.Subscription{
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) Unsubscribe(ctx context.Context, subscriber, channel bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"subscriber": subscriber, "channel": channel})
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepository) Subscribers(ctx context.Context, channel bson.ObjectID, q utils.PageQuery) (utils.Page[models.Subscriber], error) {
	return aggregatePage[models.Subscriber](ctx, r.col, SubscribersPipeline(channel, q))
}
