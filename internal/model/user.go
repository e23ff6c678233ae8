// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account (channel).
//
// PasswordHash and RefreshTokenHash are only populated by the repository
// methods that explicitly load secrets; everything else returns the public
// projection. The json:"-" tags keep them out of responses either way.
type User struct {
	ID         string    `json:"_id"`
	UserName   string    `json:"userName"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	GitHubID   int64     `json:"githubId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	PasswordHash     string `json:"-"`
	RefreshTokenHash string `json:"-"`
}

// UserSummary is the owner/subscriber shape embedded in other resources.
type UserSummary struct {
	ID       string `json:"_id"`
	UserName string `json:"userName"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// Summary returns the embeddable projection of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, UserName: u.UserName, FullName: u.FullName, Avatar: u.Avatar}
}

// Subscription status values reported on a channel profile.
const (
	StatusSubscribed    = "Subscribed"
	StatusNotSubscribed = "Not Subscribed"
	StatusSameUser      = "Same User"
)

// ChannelProfile is a user as seen by another user visiting their channel.
type ChannelProfile struct {
	ID                        string `json:"_id"`
	UserName                  string `json:"userName"`
	FullName                  string `json:"fullName"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
	SubscriptionStatus        string `json:"subscriptionStatus"`
}
