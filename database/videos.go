package database

import (
	"context"
	"fmt"
	"time"

	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type VideoRepository struct {
	col       *mongo.Collection
	likes     *mongo.Collection
	comments  *mongo.Collection
	playlists *mongo.Collection
	users     *mongo.Collection
}

func NewVideoRepository(d *DB) *VideoRepository {
	return &VideoRepository{
		col:       d.OpenCollection(VideosCollection),
		likes:     d.OpenCollection(LikesCollection),
		comments:  d.OpenCollection(CommentsCollection),
		playlists: d.OpenCollection(PlaylistsCollection),
		users:     d.OpenCollection(UsersCollection),
	}
}

func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	now := time.Now().UTC()
	video.CreatedAt, video.UpdatedAt = now, now
	res, err := r.col.InsertOne(ctx, video)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	video.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id bson.ObjectID) (models.Video, error) {
	var video models.Video
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&video); err != nil {
		return models.Video{}, notFound(err)
	}
	return video, nil
}

func (r *VideoRepository) List(ctx context.Context, f VideoFilter, q utils.PageQuery) (utils.Page[models.VideoCard], error) {
	return aggregatePage[models.VideoCard](ctx, r.col, VideoListPipeline(f, q))
}

// IncrementViews bumps the view counter atomically and returns the result.
func (r *VideoRepository) IncrementViews(ctx context.Context, id bson.ObjectID) (models.Video, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var video models.Video
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&video)
	if err != nil {
		return models.Video{}, notFound(err)
	}
	return video, nil
}

func (r *VideoRepository) UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (models.Video, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var video models.Video
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&video); err != nil {
		return models.Video{}, notFound(err)
	}
	return video, nil
}

// Delete removes the video with its likes, its comments (and their likes),
// every playlist entry pointing at it and its place in watch histories.
func (r *VideoRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	ids, err := idsOf(ctx, r.comments, bson.M{"video": id})
	if err != nil {
		return fmt.Errorf("list video comments: %w", err)
	}

	likeFilter := bson.M{"video": id}
	if len(ids) > 0 {
		likeFilter = bson.M{"$or": bson.A{bson.M{"video": id}, bson.M{"comment": bson.M{"$in": ids}}}}
	}
	if _, err := r.likes.DeleteMany(ctx, likeFilter); err != nil {
		return fmt.Errorf("delete video likes: %w", err)
	}
	if _, err := r.comments.DeleteMany(ctx, bson.M{"video": id}); err != nil {
		return fmt.Errorf("delete video comments: %w", err)
	}
	if _, err := r.playlists.UpdateMany(ctx,
		bson.M{"videos._id": id},
		bson.M{"$pull": bson.M{"videos": bson.M{"_id": id}}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
	); err != nil {
		return fmt.Errorf("pull video from playlists: %w", err)
	}
	filter, update := pullFromWatchHistory(id)
	if _, err := r.users.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("pull video from watch histories: %w", err)
	}
	return nil
}

func pullFromWatchHistory(video bson.ObjectID) (filter, update bson.M) {
	return bson.M{"watchHistory": video}, bson.M{"$pull": bson.M{"watchHistory": video}}
}
