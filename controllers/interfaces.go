package controllers

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/McTechie/tubecafe-backend/database"
	"github.com/McTechie/tubecafe-backend/media"
	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// The interfaces below are satisfied by the database repositories and the
// media service; tests swap in in-memory versions.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id bson.ObjectID) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByLogin(ctx context.Context, username, email string) (models.User, error)
	Taken(ctx context.Context, username, email string, except bson.ObjectID) (bool, error)
	List(ctx context.Context, query string, q utils.PageQuery) (utils.Page[models.User], error)
	UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (models.User, error)
	SetRefreshToken(ctx context.Context, id bson.ObjectID, hash string) error
	RotateRefreshToken(ctx context.Context, id bson.ObjectID, oldHash, newHash string) error
	SetResetToken(ctx context.Context, id bson.ObjectID, hash string, expire time.Time) error
	ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (models.User, error)
	SetPassword(ctx context.Context, id bson.ObjectID, passwordHash string) error
	AddToWatchHistory(ctx context.Context, userID, videoID bson.ObjectID) error
	WatchHistory(ctx context.Context, userID bson.ObjectID, q utils.PageQuery) (utils.Page[models.VideoCard], error)
	ChannelProfile(ctx context.Context, username string, viewer bson.ObjectID) (models.ChannelProfile, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

type VideoStore interface {
	Create(ctx context.Context, video *models.Video) error
	FindByID(ctx context.Context, id bson.ObjectID) (models.Video, error)
	List(ctx context.Context, f database.VideoFilter, q utils.PageQuery) (utils.Page[models.VideoCard], error)
	IncrementViews(ctx context.Context, id bson.ObjectID) (models.Video, error)
	UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (models.Video, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

type PlaylistStore interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	FindByID(ctx context.Context, id bson.ObjectID) (models.Playlist, error)
	ListByOwner(ctx context.Context, owner bson.ObjectID, includeUnpublished bool, q utils.PageQuery) (utils.Page[models.Playlist], error)
	AddVideo(ctx context.Context, id bson.ObjectID, entry models.PlaylistVideo) (models.Playlist, error)
	RemoveVideo(ctx context.Context, id, video bson.ObjectID, order *int) (models.Playlist, error)
	ReplaceVideos(ctx context.Context, id bson.ObjectID, videos []models.PlaylistVideo) (models.Playlist, error)
	UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (models.Playlist, error)
	Videos(ctx context.Context, id bson.ObjectID, canEdit bool, q utils.PageQuery) (utils.Page[models.PlaylistEntry], error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id bson.ObjectID) (models.Comment, error)
	ListByVideo(ctx context.Context, video bson.ObjectID, q utils.PageQuery) (utils.Page[models.CommentView], error)
	ListReplies(ctx context.Context, parent bson.ObjectID, q utils.PageQuery) (utils.Page[models.CommentView], error)
	Delete(ctx context.Context, comment models.Comment) ([]bson.ObjectID, error)
}

type LikeStore interface {
	Like(ctx context.Context, like models.Like) error
	Unlike(ctx context.Context, by bson.ObjectID, kind models.ResourceType, target bson.ObjectID) error
	Count(ctx context.Context, kind models.ResourceType, target bson.ObjectID) (int64, error)
}

type SubscriptionStore interface {
	Subscribe(ctx context.Context, subscriber, channel bson.ObjectID) error
	Unsubscribe(ctx context.Context, subscriber, channel bson.ObjectID) error
	Subscribers(ctx context.Context, channel bson.ObjectID, q utils.PageQuery) (utils.Page[models.Subscriber], error)
}

type ActionLogStore interface {
	List(ctx context.Context, f models.ActionLogFilter, q utils.PageQuery) (utils.Page[models.ActionLog], error)
}

type MediaService interface {
	UploadImage(ctx context.Context, fh *multipart.FileHeader, folder string) (media.Asset, error)
	UploadVideo(ctx context.Context, fh *multipart.FileHeader, folder string) (media.Asset, error)
	UploadVideoWithThumbnail(ctx context.Context, video, thumbnail *multipart.FileHeader, folder string) (media.Asset, media.Asset, error)
	DiscardURL(ctx context.Context, url string)
}
