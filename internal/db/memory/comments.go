package memory

import (
	"context"
	"slices"
	"time"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/comments"
)

type commentRepo struct {
	s *Store
}

func cloneComment(c *comments.Comment) *comments.Comment {
	out := *c
	out.Likes = cloneStrings(c.Likes)
	out.Replies = make([]comments.Reply, len(c.Replies))
	for i, reply := range c.Replies {
		reply.Likes = cloneStrings(reply.Likes)
		out.Replies[i] = reply
	}
	return &out
}

func (r *commentRepo) Create(ctx context.Context, comment *comments.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[comment.ID]; ok {
		return &apperr.AlreadyExistsError{Entity: apperr.EntityComment, Field: "id", Value: comment.ID}
	}
	r.s.comments[comment.ID] = cloneComment(comment)
	r.s.commentOrder = append(r.s.commentOrder, comment.ID)
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*comments.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, apperr.NotFound(apperr.EntityComment, id)
	}
	return cloneComment(c), nil
}

func (r *commentRepo) ListByPost(ctx context.Context, postID string) ([]*comments.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*comments.Comment{}
	for _, id := range r.s.commentOrder {
		if c := r.s.comments[id]; c.PostID == postID {
			result = append(result, cloneComment(c))
		}
	}
	return result, nil
}

func (r *commentRepo) ListIDsByAuthor(ctx context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := []string{}
	for _, id := range r.s.commentOrder {
		if r.s.comments[id].UserID == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *commentRepo) UpdateText(ctx context.Context, id, text string) (*comments.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, apperr.NotFound(apperr.EntityComment, id)
	}
	c.Text = text
	c.UpdatedAt = time.Now().UTC()
	return cloneComment(c), nil
}

func (r *commentRepo) AddLike(ctx context.Context, commentID, userID string) (bool, error) {
	return r.mutate(commentID, func(c *comments.Comment) (bool, error) {
		return addMember(&c.Likes, userID), nil
	})
}

func (r *commentRepo) RemoveLike(ctx context.Context, commentID, userID string) (bool, error) {
	return r.mutate(commentID, func(c *comments.Comment) (bool, error) {
		return removeMember(&c.Likes, userID), nil
	})
}

func (r *commentRepo) mutate(commentID string, fn func(*comments.Comment) (bool, error)) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.comments[commentID]
	if !ok {
		return false, apperr.NotFound(apperr.EntityComment, commentID)
	}
	return fn(c)
}

// mutateReply runs fn against the reply in place
func (r *commentRepo) mutateReply(commentID, replyID string, fn func(*comments.Reply) bool) (bool, error) {
	return r.mutate(commentID, func(c *comments.Comment) (bool, error) {
		reply, ok := c.FindReply(replyID)
		if !ok {
			return false, apperr.NotFound(apperr.EntityReply, replyID)
		}
		return fn(reply), nil
	})
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return apperr.NotFound(apperr.EntityComment, id)
	}
	r.deleteLocked(id)
	return nil
}

func (r *commentRepo) deleteLocked(id string) {
	delete(r.s.comments, id)
	r.s.commentOrder = removeID(r.s.commentOrder, id)
}

func (r *commentRepo) DeleteByPosts(ctx context.Context, postIDs []string) (int64, error) {
	return r.deleteWhere(func(c *comments.Comment) bool { return slices.Contains(postIDs, c.PostID) })
}

func (r *commentRepo) DeleteByAuthor(ctx context.Context, userID string) (int64, error) {
	return r.deleteWhere(func(c *comments.Comment) bool { return c.UserID == userID })
}

func (r *commentRepo) deleteWhere(match func(*comments.Comment) bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, c := range r.s.comments {
		if match(c) {
			r.deleteLocked(id)
			n++
		}
	}
	return n, nil
}

func (r *commentRepo) RemoveLikeEverywhere(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, c := range r.s.comments {
		if removeMember(&c.Likes, userID) {
			n++
		}
		for i := range c.Replies {
			if removeMember(&c.Replies[i].Likes, userID) {
				n++
			}
		}
	}
	return n, nil
}

func (r *commentRepo) AddReply(ctx context.Context, commentID string, reply *comments.Reply) error {
	_, err := r.mutate(commentID, func(c *comments.Comment) (bool, error) {
		if _, exists := c.FindReply(reply.ID); exists {
			return false, &apperr.AlreadyExistsError{Entity: apperr.EntityReply, Field: "id", Value: reply.ID}
		}
		added := *reply
		added.Likes = cloneStrings(reply.Likes)
		c.Replies = append(c.Replies, added)
		return true, nil
	})
	return err
}

func (r *commentRepo) UpdateReplyText(ctx context.Context, commentID, replyID, text string) error {
	_, err := r.mutateReply(commentID, replyID, func(reply *comments.Reply) bool {
		reply.Text = text
		reply.UpdatedAt = time.Now().UTC()
		return true
	})
	return err
}

func (r *commentRepo) RemoveReply(ctx context.Context, commentID, replyID string) (bool, error) {
	return r.mutate(commentID, func(c *comments.Comment) (bool, error) {
		before := len(c.Replies)
		c.Replies = slices.DeleteFunc(c.Replies, func(reply comments.Reply) bool { return reply.ID == replyID })
		return len(c.Replies) != before, nil
	})
}

func (r *commentRepo) AddReplyLike(ctx context.Context, commentID, replyID, userID string) (bool, error) {
	return r.mutateReply(commentID, replyID, func(reply *comments.Reply) bool {
		return addMember(&reply.Likes, userID)
	})
}

func (r *commentRepo) RemoveReplyLike(ctx context.Context, commentID, replyID, userID string) (bool, error) {
	return r.mutateReply(commentID, replyID, func(reply *comments.Reply) bool {
		return removeMember(&reply.Likes, userID)
	})
}

func (r *commentRepo) RemoveRepliesByAuthor(ctx context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, c := range r.s.comments {
		before := len(c.Replies)
		c.Replies = slices.DeleteFunc(c.Replies, func(reply comments.Reply) bool { return reply.UserID == userID })
		n += int64(before - len(c.Replies))
	}
	return n, nil
}
