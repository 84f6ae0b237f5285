package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Comment struct {
	ID        bson.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Content   string          `bson:"content" json:"content"`
	Video     bson.ObjectID   `bson:"video" json:"video"`
	Owner     bson.ObjectID   `bson:"owner" json:"owner"`
	Parent    *bson.ObjectID  `bson:"parent,omitempty" json:"parent,omitempty"`
	Replies   []bson.ObjectID `bson:"replies" json:"replies"`
	CreatedAt time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt" json:"updatedAt"`
}

type CommentView struct {
	ID         bson.ObjectID  `bson:"_id" json:"_id"`
	Content    string         `bson:"content" json:"content"`
	Video      bson.ObjectID  `bson:"video" json:"video"`
	Parent     *bson.ObjectID `bson:"parent,omitempty" json:"parent,omitempty"`
	Owner      Owner          `bson:"owner" json:"owner"`
	ReplyCount int64          `bson:"replyCount" json:"replyCount"`
	LikeCount  int64          `bson:"likeCount" json:"likeCount"`
	CreatedAt  time.Time      `bson:"createdAt" json:"createdAt"`
}
