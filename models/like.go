package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ResourceType string

const (
	ResourceVideo   ResourceType = "video"
	ResourceComment ResourceType = "comment"
)

var ErrInvalidResourceType = errors.New("resource type must be video or comment")

func ParseResourceType(raw string) (ResourceType, error) {
	switch ResourceType(raw) {
	case ResourceVideo, ResourceComment:
		return ResourceType(raw), nil
	}
	return "", ErrInvalidResourceType
}

type Like struct {
	ID        bson.ObjectID  `bson:"_id,omitempty" json:"_id"`
	LikedBy   bson.ObjectID  `bson:"likedBy" json:"likedBy"`
	Video     *bson.ObjectID `bson:"video,omitempty" json:"video,omitempty"`
	Comment   *bson.ObjectID `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// NewLike builds a like that references exactly one target.
func NewLike(by bson.ObjectID, kind ResourceType, target bson.ObjectID) (Like, error) {
	now := time.Now().UTC()
	like := Like{LikedBy: by, CreatedAt: now, UpdatedAt: now}
	switch kind {
	case ResourceVideo:
		like.Video = &target
	case ResourceComment:
		like.Comment = &target
	default:
		return Like{}, ErrInvalidResourceType
	}
	return like, nil
}

func (l Like) Target() (ResourceType, bson.ObjectID) {
	if l.Video != nil {
		return ResourceVideo, *l.Video
	}
	if l.Comment != nil {
		return ResourceComment, *l.Comment
	}
	return "", bson.NilObjectID
}
