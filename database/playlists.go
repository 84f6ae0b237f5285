package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type PlaylistRepository struct {
	col *mongo.Collection
}

func NewPlaylistRepository(d *DB) *PlaylistRepository {
	return &PlaylistRepository{col: d.OpenCollection(PlaylistsCollection)}
}

func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	now := time.Now().UTC()
	playlist.CreatedAt, playlist.UpdatedAt = now, now
	if playlist.Videos == nil {
		playlist.Videos = []models.PlaylistVideo{}
	}
	res, err := r.col.InsertOne(ctx, playlist)
	if err != nil {
		return fmt.Errorf("insert playlist: %w", err)
	}
	playlist.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (r *PlaylistRepository) FindByID(ctx context.Context, id bson.ObjectID) (models.Playlist, error) {
	var playlist models.Playlist
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&playlist); err != nil {
		return models.Playlist{}, notFound(err)
	}
	return playlist, nil
}

func (r *PlaylistRepository) ListByOwner(ctx context.Context, owner bson.ObjectID, includeUnpublished bool, q utils.PageQuery) (utils.Page[models.Playlist], error) {
	return aggregatePage[models.Playlist](ctx, r.col, PlaylistListPipeline(owner, includeUnpublished, q))
}

func (r *PlaylistRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (models.Playlist, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var playlist models.Playlist
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&playlist); err != nil {
		return models.Playlist{}, notFound(err)
	}
	return playlist, nil
}

// AddVideo appends entry unless the video is already in the playlist, in
// which case ErrConflict is returned.
func (r *PlaylistRepository) AddVideo(ctx context.Context, id bson.ObjectID, entry models.PlaylistVideo) (models.Playlist, error) {
	playlist, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": id, "videos._id": bson.M{"$ne": entry.Video}},
		bson.M{
			"$push": bson.M{"videos": entry},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if errors.Is(err, ErrNotFound) {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return models.Playlist{}, findErr
		}
		return models.Playlist{}, ErrConflict
	}
	return playlist, err
}

// RemoveVideo pulls the entry for video, optionally only at the given order.
func (r *PlaylistRepository) RemoveVideo(ctx context.Context, id, video bson.ObjectID, order *int) (models.Playlist, error) {
	match := bson.M{"_id": video}
	if order != nil {
		match["order"] = *order
	}
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": id, "videos": bson.M{"$elemMatch": match}},
		bson.M{
			"$pull": bson.M{"videos": match},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
}

// ReplaceVideos writes a reordered entry list.
func (r *PlaylistRepository) ReplaceVideos(ctx context.Context, id bson.ObjectID, videos []models.PlaylistVideo) (models.Playlist, error) {
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"videos":    videos,
		"updatedAt": time.Now().UTC(),
	}})
}

func (r *PlaylistRepository) UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (models.Playlist, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *PlaylistRepository) Videos(ctx context.Context, id bson.ObjectID, canEdit bool, q utils.PageQuery) (utils.Page[models.PlaylistEntry], error) {
	return aggregatePage[models.PlaylistEntry](ctx, r.col, PlaylistVideosPipeline(id, canEdit, q))
}

func (r *PlaylistRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
