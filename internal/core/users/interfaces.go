package users

import "context"

// Repository defines the data access interface for users.
// Set mutations are single atomic store operations; no method reads a whole
// array, changes it in memory and writes it back.
type Repository interface {
	// Create inserts a new user. Returns *apperr.AlreadyExistsError when the
	// username or email is taken.
	Create(ctx context.Context, user *User) (*User, error)

	// GetByID returns *apperr.NotFoundError when the user does not exist
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByIDs retrieves multiple users in one round trip.
	// Missing users are omitted from the map, not reported as errors.
	GetByIDs(ctx context.Context, ids []string) (map[string]*User, error)

	// GetByLogin looks a user up by username or email
	GetByLogin(ctx context.Context, login string) (*User, error)

	// Search matches username or full name case-insensitively
	Search(ctx context.Context, query string, limit int) ([]*User, error)

	UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*User, error)

	// AddToSet adds member to the named set on user id if absent.
	// Returns true when membership changed, false when member was already present.
	// Returns *apperr.NotFoundError when the user does not exist.
	AddToSet(ctx context.Context, id string, field SetField, member string) (bool, error)

	// AddFollowing adds targetID to the actor's following unless it is already
	// there or targetID is on the actor's block list. Both conditions are checked
	// in the same atomic write. blocked is true when the block list prevented it.
	AddFollowing(ctx context.Context, actorID, targetID string) (added, blocked bool, err error)

	// RemoveFromSet removes member from the named set on user id if present.
	// Returns true when membership changed.
	RemoveFromSet(ctx context.Context, id string, field SetField, member string) (bool, error)

	// RemoveMemberEverywhere removes member from the named set of every user.
	// Returns the number of users changed. Idempotent.
	RemoveMemberEverywhere(ctx context.Context, field SetField, member string) (int64, error)

	// ReconcileFollowEdges repairs one-sided follow edges left by interrupted
	// Follow/Unfollow calls and drops references to users that no longer exist.
	ReconcileFollowEdges(ctx context.Context) (*ReconcileReport, error)

	// Delete removes the user record. Returns *apperr.NotFoundError when absent.
	Delete(ctx context.Context, id string) error
}

// PasswordHasher is the credential collaborator used by Register and Authenticate
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Service defines account and profile operations
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	// Authenticate returns ErrInvalidCredentials for unknown logins and wrong passwords alike
	Authenticate(ctx context.Context, login, password string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*User, error)
	Search(ctx context.Context, query string) ([]*User, error)
}

// RelationshipService enforces the follow/block invariants.
// actorID is always the logged-in user.
type RelationshipService interface {
	Follow(ctx context.Context, actorID, targetID string) error
	Unfollow(ctx context.Context, actorID, targetID string) error
	Block(ctx context.Context, actorID, targetID string) error
	Unblock(ctx context.Context, actorID, targetID string) error
	// ListBlocked returns the block list of userID enriched with display attributes,
	// in block order. Blocked users that no longer exist are skipped.
	ListBlocked(ctx context.Context, userID string) ([]ProfileView, error)
}
