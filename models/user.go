package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID                  bson.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Username            string          `bson:"username" json:"username"`
	Email               string          `bson:"email" json:"email"`
	Password            string          `bson:"password" json:"-"` // never expose
	FullName            string          `bson:"fullName" json:"fullName"`
	Avatar              string          `bson:"avatar" json:"avatar"`
	CoverImage          string          `bson:"coverImage" json:"coverImage"`
	WatchHistory        []bson.ObjectID `bson:"watchHistory" json:"watchHistory"`
	Role                Role            `bson:"role" json:"role"`
	RefreshToken        string          `bson:"refreshToken,omitempty" json:"-"`
	ResetPasswordToken  string          `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire *time.Time      `bson:"resetPasswordExpire,omitempty" json:"-"`
	CreatedAt           time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time       `bson:"updatedAt" json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Owner is the public projection of a user joined onto other documents.
type Owner struct {
	ID       bson.ObjectID `bson:"_id" json:"_id"`
	Username string        `bson:"username" json:"username"`
	FullName string        `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Avatar   string        `bson:"avatar" json:"avatar"`
}

type ChannelProfile struct {
	ID                bson.ObjectID `bson:"_id" json:"_id"`
	Username          string        `bson:"username" json:"username"`
	FullName          string        `bson:"fullName" json:"fullName"`
	Avatar            string        `bson:"avatar" json:"avatar"`
	CoverImage        string        `bson:"coverImage" json:"coverImage"`
	SubscriberCount   int64         `bson:"subscriberCount" json:"subscriberCount"`
	SubscribedToCount int64         `bson:"subscribedToCount" json:"subscribedToCount"`
	IsSubscribed      bool          `bson:"isSubscribed" json:"isSubscribed"`
	CreatedAt         time.Time     `bson:"createdAt" json:"createdAt"`
}
