package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type PlaylistVideo struct {
	Video bson.ObjectID `bson:"_id" json:"_id"`
	Order int           `bson:"order" json:"order"`
}

type Playlist struct {
	ID          bson.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title       string          `bson:"title" json:"title"`
	Description string          `bson:"description" json:"description"`
	Thumbnail   string          `bson:"thumbnail" json:"thumbnail"`
	Owner       bson.ObjectID   `bson:"owner" json:"owner"`
	IsPublished bool            `bson:"isPublished" json:"isPublished"`
	Videos      []PlaylistVideo `bson:"videos" json:"videos"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt" json:"updatedAt"`
}

func (p Playlist) VisibleTo(viewer bson.ObjectID) bool {
	return p.IsPublished || p.Owner == viewer
}

func (p Playlist) IndexOf(video bson.ObjectID) int {
	for i, v := range p.Videos {
		if v.Video == video {
			return i
		}
	}
	return -1
}

// NextOrder is one past the highest order in the playlist.
func (p Playlist) NextOrder() int {
	max := 0
	for _, v := range p.Videos {
		if v.Order > max {
			max = v.Order
		}
	}
	return max + 1
}

// Move relocates the entry at from to index to and renumbers orders 1..n.
// It returns false when either index is out of range.
func (p *Playlist) Move(from, to int) bool {
	n := len(p.Videos)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	moved := p.Videos[from]
	rest := append(append([]PlaylistVideo{}, p.Videos[:from]...), p.Videos[from+1:]...)
	reordered := make([]PlaylistVideo, 0, n)
	reordered = append(reordered, rest[:to]...)
	reordered = append(reordered, moved)
	reordered = append(reordered, rest[to:]...)
	for i := range reordered {
		reordered[i].Order = i + 1
	}
	p.Videos = reordered
	return true
}

// PlaylistEntry is one playlist video with its owner joined.
type PlaylistEntry struct {
	ID            bson.ObjectID `bson:"_id" json:"_id"`
	Title         string        `bson:"title" json:"title"`
	Description   string        `bson:"description" json:"description"`
	Thumbnail     string        `bson:"thumbnail" json:"thumbnail"`
	VideoURL      string        `bson:"videoUrl" json:"videoUrl"`
	Duration      float64       `bson:"duration" json:"duration"`
	IsPublished   bool          `bson:"isPublished" json:"isPublished"`
	Order         int           `bson:"order" json:"order"`
	IsDeletable   bool          `bson:"isDeletable" json:"isDeletable"`
	IsReorderable bool          `bson:"isReorderable" json:"isReorderable"`
	Owner         Owner         `bson:"owner" json:"owner"`
}
