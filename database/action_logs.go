package database

import (
	"context"
	"fmt"

	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type ActionLogRepository struct {
	col *mongo.Collection
}

func NewActionLogRepository(d *DB) *ActionLogRepository {
	return &ActionLogRepository{col: d.OpenCollection(ActionLogsCollection)}
}

func (r *ActionLogRepository) Insert(ctx context.Context, entry models.ActionLog) error {
	if _, err := r.col.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert action log: %w", err)
	}
	return nil
}

func (r *ActionLogRepository) List(ctx context.Context, f models.ActionLogFilter, q utils.PageQuery) (utils.Page[models.ActionLog], error) {
	return aggregatePage[models.ActionLog](ctx, r.col, ActionLogsPipeline(f, q))
}
