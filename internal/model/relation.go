package model

import "time"

// RelationKind names one of the closed set of toggleable relations.
type RelationKind string

const (
	KindVideoLike    RelationKind = "video-like"
	KindCommentLike  RelationKind = "comment-like"
	KindTweetLike    RelationKind = "tweet-like"
	KindSubscription RelationKind = "subscription"
)

// RelationKinds lists every valid kind.
var RelationKinds = []RelationKind{KindVideoLike, KindCommentLike, KindTweetLike, KindSubscription}

// Valid reports whether k is one of the known kinds.
func (k RelationKind) Valid() bool {
	for _, known := range RelationKinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsLike reports whether k is stored in the likes table.
func (k RelationKind) IsLike() bool {
	return k == KindVideoLike || k == KindCommentLike || k == KindTweetLike
}

// Relation is a row of a toggleable relation: ActorID liked, or subscribed
// to, TargetID. At most one exists per (Kind, ActorID, TargetID).
type Relation struct {
	ID        string       `json:"_id"`
	Kind      RelationKind `json:"kind"`
	ActorID   string       `json:"actor"`
	TargetID  string       `json:"target"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ToggleResult reports what a toggle did.
type ToggleResult struct {
	Kind     RelationKind `json:"kind"`
	TargetID string       `json:"targetId"`
	Created  bool         `json:"created"`
}
