package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Video struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	VideoURL    string        `bson:"videoUrl" json:"videoUrl"`
	Thumbnail   string        `bson:"thumbnail" json:"thumbnail"`
	Duration    float64       `bson:"duration" json:"duration"`
	Views       int64         `bson:"views" json:"views"`
	IsPublished bool          `bson:"isPublished" json:"isPublished"`
	Owner       bson.ObjectID `bson:"owner" json:"owner"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// VisibleTo reports whether the viewer may see the video.
func (v Video) VisibleTo(viewer bson.ObjectID) bool {
	return v.IsPublished || v.Owner == viewer
}

// VideoCard is a video with its owner joined, as returned by listings.
type VideoCard struct {
	ID          bson.ObjectID `bson:"_id" json:"_id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	VideoURL    string        `bson:"videoUrl" json:"videoUrl"`
	Thumbnail   string        `bson:"thumbnail" json:"thumbnail"`
	Duration    float64       `bson:"duration" json:"duration"`
	Views       int64         `bson:"views" json:"views"`
	IsPublished bool          `bson:"isPublished" json:"isPublished"`
	Owner       Owner         `bson:"owner" json:"owner"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
}
