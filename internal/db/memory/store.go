// Package memory is an in-process entity store. A single RWMutex serializes
// writers, which makes every repository method atomic. Used for local
// development (STORE_DRIVER=memory) and service tests.
package memory

import (
	"slices"
	"sync"

	"Murmur/internal/core/comments"
	"Murmur/internal/core/posts"
	"Murmur/internal/core/stories"
	"Murmur/internal/core/users"
)

// Store holds every entity table behind one lock
type Store struct {
	users    map[string]*users.User
	posts    map[string]*posts.Post
	comments map[string]*comments.Comment
	stories  map[string]*stories.Story
	// insertion order per table, so listings are stable
	postOrder    []string
	commentOrder []string
	storyOrder   []string
	mu           sync.RWMutex
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*users.User),
		posts:    make(map[string]*posts.Post),
		comments: make(map[string]*comments.Comment),
		stories:  make(map[string]*stories.Story),
	}
}

// Users returns the user repository view of the store
func (s *Store) Users() users.Repository { return &userRepo{s: s} }

// Posts returns the post repository view of the store
func (s *Store) Posts() posts.Repository { return &postRepo{s: s} }

// Comments returns the comment repository view of the store
func (s *Store) Comments() comments.Repository { return &commentRepo{s: s} }

// Stories returns the story repository view of the store
func (s *Store) Stories() stories.Repository { return &storyRepo{s: s} }

// addMember appends member if absent
func addMember(set *[]string, member string) bool {
	if slices.Contains(*set, member) {
		return false
	}
	*set = append(*set, member)
	return true
}

// removeMember drops every occurrence of member
func removeMember(set *[]string, member string) bool {
	before := len(*set)
	*set = slices.DeleteFunc(*set, func(v string) bool { return v == member })
	return len(*set) != before
}

func cloneStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return slices.Clone(v)
}

func removeID(order []string, id string) []string {
	return slices.DeleteFunc(order, func(v string) bool { return v == id })
}
