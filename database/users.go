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

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(d *DB) *UserRepository {
	return &UserRepository{col: d.OpenCollection(UsersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.WatchHistory == nil {
		user.WatchHistory = []bson.ObjectID{}
	}
	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, filter).Decode(&user); err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id bson.ObjectID) (models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByLogin matches either identifier; empty ones are ignored.
func (r *UserRepository) FindByLogin(ctx context.Context, username, email string) (models.User, error) {
	or := bson.A{}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return models.User{}, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"$or": or})
}

// Taken reports whether another user already holds username or email.
func (r *UserRepository) Taken(ctx context.Context, username, email string, except bson.ObjectID) (bool, error) {
	or := bson.A{}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return false, nil
	}
	filter := bson.M{"$or": or}
	if !except.IsZero() {
		filter["_id"] = bson.M{"$ne": except}
	}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepository) List(ctx context.Context, query string, q utils.PageQuery) (utils.Page[models.User], error) {
	return aggregatePage[models.User](ctx, r.col, UserListPipeline(query, q))
}

func (r *UserRepository) update(ctx context.Context, filter bson.M, update bson.M) (models.User, error) {
	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
		update["$set"] = set
	}
	set["updatedAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		if utils.IsDuplicateKey(err) {
			return models.User{}, ErrConflict
		}
		return models.User{}, notFound(err)
	}
	return user, nil
}

// UpdateFields sets the given fields and returns the updated user.
func (r *UserRepository) UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (models.User, error) {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	return r.update(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id bson.ObjectID, hash string) error {
	update := bson.M{"$set": bson.M{"refreshToken": hash}}
	if hash == "" {
		update = bson.M{"$unset": bson.M{"refreshToken": ""}}
	}
	_, err := r.update(ctx, bson.M{"_id": id}, update)
	return err
}

// RotateRefreshToken swaps the stored hash only if it still equals oldHash,
// so a replayed token loses the race.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, id bson.ObjectID, oldHash, newHash string) error {
	_, err := r.update(ctx,
		bson.M{"_id": id, "refreshToken": oldHash},
		bson.M{"$set": bson.M{"refreshToken": newHash}},
	)
	return err
}

func (r *UserRepository) SetResetToken(ctx context.Context, id bson.ObjectID, hash string, expire time.Time) error {
	_, err := r.update(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"resetPasswordToken":  hash,
		"resetPasswordExpire": expire.UTC(),
	}})
	return err
}

// ResetPassword consumes an unexpired reset token and revokes the refresh
// token in the same write.
func (r *UserRepository) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (models.User, error) {
	return r.update(ctx,
		bson.M{"resetPasswordToken": tokenHash, "resetPasswordExpire": bson.M{"$gt": now.UTC()}},
		bson.M{
			"$set":   bson.M{"password": passwordHash},
			"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": "", "refreshToken": ""},
		},
	)
}

func (r *UserRepository) SetPassword(ctx context.Context, id bson.ObjectID, passwordHash string) error {
	_, err := r.update(ctx, bson.M{"_id": id}, bson.M{
		"$set":   bson.M{"password": passwordHash},
		"$unset": bson.M{"refreshToken": ""},
	})
	return err
}

func (r *UserRepository) AddToWatchHistory(ctx context.Context, userID, videoID bson.ObjectID) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$addToSet": bson.M{"watchHistory": videoID},
	})
	if err != nil {
		return fmt.Errorf("update watch history: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) WatchHistory(ctx context.Context, userID bson.ObjectID, q utils.PageQuery) (utils.Page[models.VideoCard], error) {
	return aggregatePage[models.VideoCard](ctx, r.col, WatchHistoryPipeline(userID, q))
}

func (r *UserRepository) ChannelProfile(ctx context.Context, username string, viewer bson.ObjectID) (models.ChannelProfile, error) {
	cursor, err := r.col.Aggregate(ctx, ChannelProfilePipeline(username, viewer))
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("aggregate channel profile: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.ChannelProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return models.ChannelProfile{}, fmt.Errorf("decode channel profile: %w", err)
	}
	if len(profiles) == 0 {
		return models.ChannelProfile{}, ErrNotFound
	}
	return profiles[0], nil
}

func (r *UserRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
