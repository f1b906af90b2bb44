package memory

import (
	"context"
	"slices"
	"time"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/posts"
)

type postRepo struct {
	s *Store
}

func clonePost(p *posts.Post) *posts.Post {
	c := *p
	c.Media = cloneStrings(p.Media)
	c.Likes = cloneStrings(p.Likes)
	c.Comments = cloneStrings(p.Comments)
	return &c
}

func (r *postRepo) Create(ctx context.Context, post *posts.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[post.ID]; ok {
		return &apperr.AlreadyExistsError{Entity: apperr.EntityPost, Field: "id", Value: post.ID}
	}
	r.s.posts[post.ID] = clonePost(post)
	r.s.postOrder = append(r.s.postOrder, post.ID)
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, apperr.NotFound(apperr.EntityPost, id)
	}
	return clonePost(p), nil
}

func (r *postRepo) ListByOwner(ctx context.Context, userID string) ([]*posts.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*posts.Post{}
	for _, id := range r.s.postOrder {
		if p := r.s.posts[id]; p.UserID == userID {
			result = append(result, clonePost(p))
		}
	}
	return result, nil
}

func (r *postRepo) ListIDsByOwner(ctx context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := []string{}
	for _, id := range r.s.postOrder {
		if r.s.posts[id].UserID == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *postRepo) UpdateCaption(ctx context.Context, id, caption string) (*posts.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, apperr.NotFound(apperr.EntityPost, id)
	}
	p.Caption = caption
	p.UpdatedAt = time.Now().UTC()
	return clonePost(p), nil
}

func (r *postRepo) AddLike(ctx context.Context, postID, userID string) (bool, error) {
	return r.mutate(postID, func(p *posts.Post) bool { return addMember(&p.Likes, userID) })
}

func (r *postRepo) RemoveLike(ctx context.Context, postID, userID string) (bool, error) {
	return r.mutate(postID, func(p *posts.Post) bool { return removeMember(&p.Likes, userID) })
}

func (r *postRepo) AppendComment(ctx context.Context, postID, commentID string) error {
	_, err := r.mutate(postID, func(p *posts.Post) bool { return addMember(&p.Comments, commentID) })
	return err
}

func (r *postRepo) RemoveComment(ctx context.Context, postID, commentID string) (bool, error) {
	return r.mutate(postID, func(p *posts.Post) bool { return removeMember(&p.Comments, commentID) })
}

func (r *postRepo) mutate(postID string, fn func(*posts.Post) bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return false, apperr.NotFound(apperr.EntityPost, postID)
	}
	return fn(p), nil
}

func (r *postRepo) RemoveCommentRefs(ctx context.Context, commentIDs []string) (int64, error) {
	if len(commentIDs) == 0 {
		return 0, nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, p := range r.s.posts {
		before := len(p.Comments)
		p.Comments = slices.DeleteFunc(p.Comments, func(id string) bool {
			return slices.Contains(commentIDs, id)
		})
		if len(p.Comments) != before {
			n++
		}
	}
	return n, nil
}

func (r *postRepo) RemoveLikeEverywhere(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, p := range r.s.posts {
		if removeMember(&p.Likes, userID) {
			n++
		}
	}
	return n, nil
}

func (r *postRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return apperr.NotFound(apperr.EntityPost, id)
	}
	delete(r.s.posts, id)
	r.s.postOrder = removeID(r.s.postOrder, id)
	return nil
}

func (r *postRepo) DeleteByOwner(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, p := range r.s.posts {
		if p.UserID == userID {
			delete(r.s.posts, id)
			r.s.postOrder = removeID(r.s.postOrder, id)
			n++
		}
	}
	return n, nil
}
