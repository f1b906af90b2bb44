package memory

import (
	"context"
	"slices"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/stories"
)

type storyRepo struct {
	s *Store
}

func (r *storyRepo) Create(ctx context.Context, story *stories.Story) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.stories[story.ID]; ok {
		return &apperr.AlreadyExistsError{Entity: apperr.EntityStory, Field: "id", Value: story.ID}
	}
	c := *story
	r.s.stories[story.ID] = &c
	r.s.storyOrder = append(r.s.storyOrder, story.ID)
	return nil
}

func (r *storyRepo) GetByID(ctx context.Context, id string) (*stories.Story, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.stories[id]
	if !ok {
		return nil, apperr.NotFound(apperr.EntityStory, id)
	}
	c := *st
	return &c, nil
}

// ListByOwner returns newest first
func (r *storyRepo) ListByOwner(ctx context.Context, userID string) ([]*stories.Story, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*stories.Story{}
	for _, id := range slices.Backward(r.s.storyOrder) {
		if st := r.s.stories[id]; st.UserID == userID {
			c := *st
			result = append(result, &c)
		}
	}
	return result, nil
}

func (r *storyRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.stories[id]; !ok {
		return apperr.NotFound(apperr.EntityStory, id)
	}
	delete(r.s.stories, id)
	r.s.storyOrder = removeID(r.s.storyOrder, id)
	return nil
}

func (r *storyRepo) DeleteByOwner(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, st := range r.s.stories {
		if st.UserID == userID {
			delete(r.s.stories, id)
			r.s.storyOrder = removeID(r.s.storyOrder, id)
			n++
		}
	}
	return n, nil
}
