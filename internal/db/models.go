package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItemType is the kind of catalog item a favorite or review points at.
type ItemType string

const (
	ItemTrack  ItemType = "track"
	ItemAlbum  ItemType = "album"
	ItemArtist ItemType = "artist"
)

// ParseItemType validates s.
func ParseItemType(s string) (ItemType, error) {
	switch t := ItemType(s); t {
	case ItemTrack, ItemAlbum, ItemArtist:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidItemType, s)
}

// Profile is a user's public profile.
type Profile struct {
	ID               string    `json:"id"`
	DisplayName      string    `json:"displayName"`
	Bio              string    `json:"bio"`
	AvatarURI        string    `json:"avatarUri"`
	SpotifyConnected bool      `json:"spotifyConnected"` // convenience flag; the stored credential is authoritative
	Friends          []string  `json:"friends"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ProfileUpdate holds the editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName"`
	Bio         *string `json:"bio"`
	AvatarURI   *string `json:"avatarUri"`
}

// Favorite is a catalog item a user saved.
type Favorite struct {
	UserID    string    `json:"userId"`
	ItemType  ItemType  `json:"itemType"`
	ItemID    string    `json:"itemId"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// Review is a rated write-up of a catalog item.
type Review struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	ItemType  ItemType  `json:"itemType"`
	ItemID    string    `json:"itemId"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the fields a client supplies.
func (r *Review) Validate() error {
	if _, err := ParseItemType(string(r.ItemType)); err != nil {
		return err
	}
	if r.ItemID == "" {
		return fmt.Errorf("%w: missing item id", ErrInvalidItemType)
	}
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	if strings.TrimSpace(r.Body) == "" {
		return ErrEmptyBody
	}
	return nil
}

// Comment is a reply on a review.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	ReviewID  uuid.UUID `json:"reviewId"`
	UserID    string    `json:"userId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
