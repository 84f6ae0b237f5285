package database

import (
	"strings"

	"github.com/McTechie/tubecafe-backend/models"
	"github.com/McTechie/tubecafe-backend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// VideoFilter narrows a video listing.
type VideoFilter struct {
	Query              string
	SortBy             string
	SortType           string
	Owner              *bson.ObjectID
	IncludeUnpublished bool
}

var videoSortFields = map[string]bool{
	"createdAt": true,
	"views":     true,
	"duration":  true,
	"title":     true,
}

// VideoSort whitelists the sort field and defaults to newest first.
func VideoSort(sortBy, sortType string) bson.D {
	field := "createdAt"
	if videoSortFields[sortBy] {
		field = sortBy
	}
	dir := -1
	if strings.EqualFold(sortType, "asc") {
		dir = 1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

// paginate appends a $facet splitting the stream into a total count and a
// single page of items.
func paginate(stages mongo.Pipeline, q utils.PageQuery) mongo.Pipeline {
	return append(stages, bson.D{{Key: "$facet", Value: bson.M{
		"metadata": bson.A{bson.M{"$count": "total"}},
		"items": bson.A{
			bson.M{"$skip": q.Skip()},
			bson.M{"$limit": q.Limit},
		},
	}}})
}

// ownerLookup joins the public fields of the user referenced by localField
// and replaces it in place.
func ownerLookup(localField string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         UsersCollection,
			"localField":   localField,
			"foreignField": "_id",
			"as":           localField,
			"pipeline": bson.A{
				bson.M{"$project": bson.M{"_id": 1, "username": 1, "fullName": 1, "avatar": 1}},
			},
		}}},
		{{Key: "$unwind", Value: "$" + localField}},
	}
}

func regexMatch(query string, fields ...string) bson.M {
	pattern := bson.M{"$regex": utils.EscapeRegex(query), "$options": "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return bson.M{"$or": or}
}

var videoCardProjection = bson.M{
	"title":       1,
	"description": 1,
	"videoUrl":    1,
	"thumbnail":   1,
	"duration":    1,
	"views":       1,
	"isPublished": 1,
	"owner":       1,
	"createdAt":   1,
}

func VideoListPipeline(f VideoFilter, q utils.PageQuery) mongo.Pipeline {
	and := bson.A{}
	if !f.IncludeUnpublished {
		and = append(and, bson.M{"isPublished": true})
	}
	if f.Owner != nil {
		and = append(and, bson.M{"owner": *f.Owner})
	}
	if strings.TrimSpace(f.Query) != "" {
		and = append(and, regexMatch(f.Query, "title", "description"))
	}
	match := bson.M{}
	if len(and) > 0 {
		match = bson.M{"$and": and}
	}

	p := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: VideoSort(f.SortBy, f.SortType)}},
	}
	p = append(p, ownerLookup("owner")...)
	p = append(p, bson.D{{Key: "$project", Value: videoCardProjection}})
	return paginate(p, q)
}

// WatchHistoryPipeline expands a user's watchHistory into video cards in
// the order they were first watched.
func WatchHistoryPipeline(userID bson.ObjectID, q utils.PageQuery) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": userID}}},
		{{Key: "$unwind", Value: bson.M{"path": "$watchHistory", "includeArrayIndex": "position"}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         VideosCollection,
			"localField":   "watchHistory",
			"foreignField": "_id",
			"as":           "video",
		}}},
		{{Key: "$unwind", Value: "$video"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": bson.M{
			"$mergeObjects": bson.A{"$video", bson.M{"position": "$position"}},
		}}}},
		{{Key: "$sort", Value: bson.D{{Key: "position", Value: 1}}}},
	}
	p = append(p, ownerLookup("owner")...)
	p = append(p, bson.D{{Key: "$project", Value: videoCardProjection}})
	return paginate(p, q)
}

func ChannelProfilePipeline(username string, viewer bson.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         SubscriptionsCollection,
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "channelSubscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         SubscriptionsCollection,
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"subscriberCount":   bson.M{"$size": "$channelSubscribers"},
			"subscribedToCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed":      bson.M{"$in": bson.A{viewer, "$channelSubscribers.subscriber"}},
		}}},
		{{Key: "$project", Value: bson.M{
			"fullName":          1,
			"username":          1,
			"avatar":            1,
			"coverImage":        1,
			"subscriberCount":   1,
			"subscribedToCount": 1,
			"isSubscribed":      1,
			"createdAt":         1,
		}}},
	}
}

func UserListPipeline(query string, q utils.PageQuery) mongo.Pipeline {
	match := bson.M{}
	if strings.TrimSpace(query) != "" {
		match = regexMatch(query, "username", "fullName")
	}
	return paginate(mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$project", Value: bson.M{
			"password":            0,
			"refreshToken":        0,
			"resetPasswordToken":  0,
			"resetPasswordExpire": 0,
		}}},
	}, q)
}

// PlaylistListPipeline lists a channel's playlists, newest first.
func PlaylistListPipeline(owner bson.ObjectID, includeUnpublished bool, q utils.PageQuery) mongo.Pipeline {
	match := bson.M{"owner": owner}
	if !includeUnpublished {
		match["isPublished"] = true
	}
	return paginate(mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
	}, q)
}

// PlaylistVideosPipeline unrolls a playlist into its videos ordered by
// position. canEdit marks every entry deletable and reorderable.
func PlaylistVideosPipeline(playlistID bson.ObjectID, canEdit bool, q utils.PageQuery) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": playlistID}}},
		{{Key: "$unwind", Value: "$videos"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         VideosCollection,
			"localField":   "videos._id",
			"foreignField": "_id",
			"as":           "video",
		}}},
		{{Key: "$unwind", Value: "$video"}},
	}
	if !canEdit {
		p = append(p, bson.D{{Key: "$match", Value: bson.M{"video.isPublished": true}}})
	}
	p = append(p,
		bson.D{{Key: "$replaceRoot", Value: bson.M{"newRoot": bson.M{
			"$mergeObjects": bson.A{"$video", bson.M{"order": "$videos.order"}},
		}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "order", Value: 1}}}},
	)
	p = append(p, ownerLookup("owner")...)
	p = append(p, bson.D{{Key: "$project", Value: bson.M{
		"title":         1,
		"description":   1,
		"thumbnail":     1,
		"videoUrl":      1,
		"duration":      1,
		"isPublished":   1,
		"order":         1,
		"owner":         1,
		"isDeletable":   bson.M{"$literal": canEdit},
		"isReorderable": bson.M{"$literal": canEdit},
	}}})
	return paginate(p, q)
}

// CommentsPipeline lists comments matching match with their owner, reply
// count and like count. dir is 1 for oldest first, -1 for newest first.
func CommentsPipeline(match bson.M, dir int, q utils.PageQuery) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: dir}, {Key: "_id", Value: dir}}}},
	}
	p = append(p, ownerLookup("owner")...)
	p = append(p,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         LikesCollection,
			"localField":   "_id",
			"foreignField": "comment",
			"as":           "likes",
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"content":    1,
			"video":      1,
			"parent":     1,
			"owner":      1,
			"createdAt":  1,
			"replyCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$replies", bson.A{}}}},
			"likeCount":  bson.M{"$size": "$likes"},
		}}},
	)
	return paginate(p, q)
}

func SubscribersPipeline(channel bson.ObjectID, q utils.PageQuery) mongo.Pipeline {
	return paginate(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"channel": channel}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         UsersCollection,
			"localField":   "subscriber",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$project", Value: bson.M{
			"_id":          "$user._id",
			"username":     "$user.username",
			"fullName":     "$user.fullName",
			"avatar":       "$user.avatar",
			"subscribedAt": "$createdAt",
		}}},
	}, q)
}

func ActionLogsPipeline(f models.ActionLogFilter, q utils.PageQuery) mongo.Pipeline {
	match := bson.M{}
	if v := strings.ToLower(strings.TrimSpace(f.Type)); v != "" {
		match["type"] = v
	}
	if v := strings.ToLower(strings.TrimSpace(f.Source)); v != "" {
		match["source"] = v
	}
	if v := strings.ToLower(strings.TrimSpace(f.Severity)); v != "" {
		match["severity"] = v
	}
	return paginate(mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}}},
	}, q)
}
