package model

import "time"

type Tweet struct {
	ID        string       `json:"_id"`
	OwnerID   string       `json:"owner"`
	Content   string       `json:"content"`
	Owner     *UserSummary `json:"ownerDetails,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type Comment struct {
	ID        string       `json:"_id"`
	VideoID   string       `json:"video"`
	OwnerID   string       `json:"owner"`
	Content   string       `json:"content"`
	Owner     *UserSummary `json:"ownerDetails,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Playlist is an owner's ordered collection of videos.
type Playlist struct {
	ID          string    `json:"_id"`
	OwnerID     string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
