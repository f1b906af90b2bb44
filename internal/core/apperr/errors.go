package apperr

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below matches exactly one of these under errors.Is,
// so callers can branch on the kind and use errors.As when they need the details.
var (
	ErrNotFound       = errors.New("not found")
	ErrSelfReference  = errors.New("operation targets the acting user")
	ErrAlreadyExists  = errors.New("already exists")
	ErrNotFollowing   = errors.New("not following")
	ErrNotLiked       = errors.New("not liked")
	ErrNotBlocked     = errors.New("not blocked")
	ErrBlocked        = errors.New("blocked")
	ErrAlreadyBlocked = errors.New("already blocked")
	ErrNotAuthor      = errors.New("not the author")
	ErrValidation     = errors.New("validation failed")
)

// Entity names the stored record type an error refers to
type Entity string

const (
	EntityUser    Entity = "user"
	EntityPost    Entity = "post"
	EntityComment Entity = "comment"
	EntityReply   Entity = "reply"
	EntityStory   Entity = "story"
)

type NotFoundError struct {
	Entity Entity
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound is shorthand for &NotFoundError{Entity: entity, ID: id}
func NotFound(entity Entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

type SelfReferenceError struct {
	Action string
	UserID string
}

func (e *SelfReferenceError) Error() string {
	return fmt.Sprintf("cannot %s yourself", e.Action)
}

func (e *SelfReferenceError) Is(target error) bool { return target == ErrSelfReference }

// AlreadyFollowingError is returned by Follow when the edge already exists
type AlreadyFollowingError struct {
	ActorID  string
	TargetID string
}

func (e *AlreadyFollowingError) Error() string {
	return fmt.Sprintf("user %q already follows %q", e.ActorID, e.TargetID)
}

func (e *AlreadyFollowingError) Is(target error) bool { return target == ErrAlreadyExists }

// AlreadyLikedError is returned by every Like* operation when the user is already in the likes set
type AlreadyLikedError struct {
	Entity Entity
	ID     string
	UserID string
}

func (e *AlreadyLikedError) Error() string {
	return fmt.Sprintf("user %q already liked %s %q", e.UserID, e.Entity, e.ID)
}

func (e *AlreadyLikedError) Is(target error) bool { return target == ErrAlreadyExists }

// AlreadyExistsError covers uniqueness conflicts outside the toggle operations (usernames, emails)
type AlreadyExistsError struct {
	Entity Entity
	Field  string
	Value  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

type NotFollowingError struct {
	ActorID  string
	TargetID string
}

func (e *NotFollowingError) Error() string {
	return fmt.Sprintf("user %q does not follow %q", e.ActorID, e.TargetID)
}

func (e *NotFollowingError) Is(target error) bool { return target == ErrNotFollowing }

type NotLikedError struct {
	Entity Entity
	ID     string
	UserID string
}

func (e *NotLikedError) Error() string {
	return fmt.Sprintf("user %q has not liked %s %q", e.UserID, e.Entity, e.ID)
}

func (e *NotLikedError) Is(target error) bool { return target == ErrNotLiked }

type NotBlockedError struct {
	ActorID  string
	TargetID string
}

func (e *NotBlockedError) Error() string {
	return fmt.Sprintf("user %q has not blocked %q", e.ActorID, e.TargetID)
}

func (e *NotBlockedError) Is(target error) bool { return target == ErrNotBlocked }

// BlockedError is returned when an active block forbids the action (unblock first)
type BlockedError struct {
	ActorID  string
	TargetID string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("user %q has blocked %q; unblock first", e.ActorID, e.TargetID)
}

func (e *BlockedError) Is(target error) bool { return target == ErrBlocked }

type AlreadyBlockedError struct {
	ActorID  string
	TargetID string
}

func (e *AlreadyBlockedError) Error() string {
	return fmt.Sprintf("user %q already blocked %q", e.ActorID, e.TargetID)
}

func (e *AlreadyBlockedError) Is(target error) bool { return target == ErrAlreadyBlocked }

type NotAuthorError struct {
	Entity Entity
	ID     string
	UserID string
}

func (e *NotAuthorError) Error() string {
	return fmt.Sprintf("user %q is not the author of %s %q", e.UserID, e.Entity, e.ID)
}

func (e *NotAuthorError) Is(target error) bool { return target == ErrNotAuthor }

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid is shorthand for &ValidationError{Field: field, Reason: reason}
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsNotFound reports whether err is a not-found error of the given entity type
func IsNotFound(err error, entity Entity) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Entity == entity
}

// IsConflict reports whether err is a toggle or uniqueness conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrAlreadyBlocked) ||
		errors.Is(err, ErrNotFollowing) ||
		errors.Is(err, ErrNotLiked) ||
		errors.Is(err, ErrNotBlocked)
}
