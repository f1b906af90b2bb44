package users

import (
	"slices"
	"time"
)

// User is the account record plus the edge sets and post index it exclusively owns.
// Edge sets reference other users by ID only.
type User struct {
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	FullName       string    `json:"fullName,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CoverPicture   string    `json:"coverPicture,omitempty"`
	Followers      []string  `json:"followers"`
	Following      []string  `json:"following"`
	BlockList      []string  `json:"blockList"`
	Posts          []string  `json:"posts"`
}

// IsFollowing reports whether targetID is in the user's following set
func (u *User) IsFollowing(targetID string) bool {
	return slices.Contains(u.Following, targetID)
}

// HasBlocked reports whether targetID is in the user's block list
func (u *User) HasBlocked(targetID string) bool {
	return slices.Contains(u.BlockList, targetID)
}

// SetField names one of the ID-valued set fields on a user record.
// The store exposes atomic add/remove primitives addressed by these names.
type SetField string

const (
	SetFollowers SetField = "followers"
	SetFollowing SetField = "following"
	SetBlockList SetField = "block_list"
	// SetPosts is ordered by insertion; adding appends
	SetPosts SetField = "posts"
)

// Valid reports whether f is a known set field
func (f SetField) Valid() bool {
	switch f {
	case SetFollowers, SetFollowing, SetBlockList, SetPosts:
		return true
	}
	return false
}

// EdgeFields are the relationship sets swept when a user disappears
var EdgeFields = []SetField{SetFollowers, SetFollowing, SetBlockList}

// ProfileView is the display projection used to enrich ID lists (e.g. the block list)
type ProfileView struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"fullName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// View projects a user to its display attributes
func (u *User) View() ProfileView {
	return ProfileView{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
	}
}

// RegisterRequest is the input for creating an account
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
}

// UpdateProfileInput carries the mutable profile fields.
// Nil means "leave unchanged"; edge sets are never updatable through this path.
type UpdateProfileInput struct {
	FullName       *string `json:"fullName,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
	CoverPicture   *string `json:"coverPicture,omitempty"`
}

// ReconcileReport summarizes a follow-edge reconciliation sweep
type ReconcileReport struct {
	FollowersAdded   int64 `json:"followersAdded"`
	FollowersRemoved int64 `json:"followersRemoved"`
	FollowingRemoved int64 `json:"followingRemoved"`
	BlockListRemoved int64 `json:"blockListRemoved"`
}
