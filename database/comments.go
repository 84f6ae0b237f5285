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

type CommentRepository struct {
	col   *mongo.Collection
	likes *mongo.Collection
}

func NewCommentRepository(d *DB) *CommentRepository {
	return &CommentRepository{
		col:   d.OpenCollection(CommentsCollection),
		likes: d.OpenCollection(LikesCollection),
	}
}

// Create inserts the comment and, for replies, links it from the parent.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	now := time.Now().UTC()
	comment.CreatedAt, comment.UpdatedAt = now, now
	if comment.Replies == nil {
		comment.Replies = []bson.ObjectID{}
	}
	res, err := r.col.InsertOne(ctx, comment)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	comment.ID = res.InsertedID.(bson.ObjectID)

	if comment.Parent != nil {
		upd, err := r.col.UpdateOne(ctx, bson.M{"_id": *comment.Parent}, bson.M{
			"$push": bson.M{"replies": comment.ID},
			"$set":  bson.M{"updatedAt": now},
		})
		if err != nil {
			return fmt.Errorf("link reply: %w", err)
		}
		if upd.MatchedCount == 0 {
			_, _ = r.col.DeleteOne(ctx, bson.M{"_id": comment.ID})
			return ErrNotFound
		}
	}
	return nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id bson.ObjectID) (models.Comment, error) {
	var comment models.Comment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return models.Comment{}, notFound(err)
	}
	return comment, nil
}

// ListByVideo returns top-level comments, newest first.
func (r *CommentRepository) ListByVideo(ctx context.Context, video bson.ObjectID, q utils.PageQuery) (utils.Page[models.CommentView], error) {
	match := bson.M{"video": video, "parent": bson.M{"$exists": false}}
	return aggregatePage[models.CommentView](ctx, r.col, CommentsPipeline(match, -1, q))
}

// ListReplies returns a comment's replies, oldest first.
func (r *CommentRepository) ListReplies(ctx context.Context, parent bson.ObjectID, q utils.PageQuery) (utils.Page[models.CommentView], error) {
	return aggregatePage[models.CommentView](ctx, r.col, CommentsPipeline(bson.M{"parent": parent}, 1, q))
}

// Delete removes the comment, every reply below it at any depth and every
// like on them, and unlinks it from its parent. It returns the ids removed.
func (r *CommentRepository) Delete(ctx context.Context, comment models.Comment) ([]bson.ObjectID, error) {
	ids, err := threadIDs(comment.ID, func(parents []bson.ObjectID) ([]bson.ObjectID, error) {
		return idsOf(ctx, r.col, bson.M{"parent": bson.M{"$in": parents}})
	})
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}

	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("delete comments: %w", err)
	}
	if res.DeletedCount == 0 {
		return nil, ErrNotFound
	}
	if _, err := r.likes.DeleteMany(ctx, bson.M{"comment": bson.M{"$in": ids}}); err != nil {
		return nil, fmt.Errorf("delete comment likes: %w", err)
	}
	if comment.Parent != nil {
		if _, err := r.col.UpdateOne(ctx, bson.M{"_id": *comment.Parent}, bson.M{
			"$pull": bson.M{"replies": comment.ID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		}); err != nil {
			return nil, fmt.Errorf("unlink reply: %w", err)
		}
	}
	return ids, nil
}

// threadIDs returns root followed by every reply below it at any depth.
// children lists the direct replies of a set of comments.
func threadIDs(root bson.ObjectID, children func(parents []bson.ObjectID) ([]bson.ObjectID, error)) ([]bson.ObjectID, error) {
	ids := []bson.ObjectID{root}
	seen := map[bson.ObjectID]bool{root: true}
	for frontier := ids; len(frontier) > 0; {
		replies, err := children(frontier)
		if err != nil {
			return nil, err
		}
		var next []bson.ObjectID
		for _, id := range replies {
			if !seen[id] {
				seen[id] = true
				next = append(next, id)
			}
		}
		ids = append(ids, next...)
		frontier = next
	}
	return ids, nil
}
