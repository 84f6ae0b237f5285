package database

import (
	"context"
	"fmt"

	"github.com/McTechie/tubecafe-backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type facetResult[T any] struct {
	Metadata []struct {
		Total int64 `bson:"total"`
	} `bson:"metadata"`
	Items []T `bson:"items"`
}

// aggregatePage runs a pipeline built with paginate and decodes its single
// $facet document.
func aggregatePage[T any](ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline) (utils.Page[T], error) {
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return utils.Page[T]{}, fmt.Errorf("aggregate %s: %w", col.Name(), err)
	}
	defer cursor.Close(ctx)

	var results []facetResult[T]
	if err := cursor.All(ctx, &results); err != nil {
		return utils.Page[T]{}, fmt.Errorf("decode %s page: %w", col.Name(), err)
	}

	page := utils.Page[T]{Items: []T{}}
	if len(results) == 0 {
		return page, nil
	}
	if results[0].Items != nil {
		page.Items = results[0].Items
	}
	if len(results[0].Metadata) > 0 {
		page.Total = results[0].Metadata[0].Total
	}
	return page, nil
}

// idsOf returns the _id of every document matching filter.
func idsOf(ctx context.Context, col *mongo.Collection, filter any) ([]bson.ObjectID, error) {
	cursor, err := col.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID bson.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]bson.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
