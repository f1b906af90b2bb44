package comments_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/comments"
	"Murmur/internal/core/posts"
	"Murmur/internal/core/users"
	"Murmur/internal/db/memory"
)

type fixture struct {
	store    *memory.Store
	comments comments.Service
	post     *posts.Post
}

// newFixture seeds alice, bob and carol plus one post by alice
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	for _, id := range []string{"alice", "bob", "carol"} {
		_, err := store.Users().Create(ctx, &users.User{
			ID: id, Username: id, Email: id + "@example.com",
			Followers: []string{}, Following: []string{}, BlockList: []string{}, Posts: []string{},
		})
		require.NoError(t, err)
	}
	postSvc := posts.NewPostService(store.Posts(), store.Users(), store.Comments(), nil)
	post, err := postSvc.CreatePost(ctx, posts.CreatePostRequest{UserID: "alice", Caption: "hello"})
	require.NoError(t, err)

	return &fixture{
		store:    store,
		comments: comments.NewCommentService(store.Comments(), store.Posts(), store.Users(), nil),
		post:     post,
	}
}

func (f *fixture) reloadPost(t *testing.T) *posts.Post {
	t.Helper()
	p, err := f.store.Posts().GetByID(context.Background(), f.post.ID)
	require.NoError(t, err)
	return p
}

func TestCreateComment_LinksToPost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c1, err := f.comments.CreateComment(ctx, f.post.ID, "bob", "first")
	require.NoError(t, err)
	c2, err := f.comments.CreateComment(ctx, f.post.ID, "carol", "second")
	require.NoError(t, err)

	assert.Equal(t, []string{c1.ID, c2.ID}, f.reloadPost(t).Comments)

	listed, err := f.comments.ListByPost(ctx, f.post.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "first", listed[0].Text)
}

func TestCreateComment_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.comments.CreateComment(ctx, f.post.ID, "bob", "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.comments.CreateComment(ctx, f.post.ID, "bob", strings.Repeat("x", 10001))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Exactly at the limit, counted in graphemes not bytes
	_, err = f.comments.CreateComment(ctx, f.post.ID, "bob", strings.Repeat("👍🏽", 10000))
	assert.NoError(t, err)

	_, err = f.comments.CreateComment(ctx, "missing", "bob", "hi")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityPost))

	_, err = f.comments.CreateComment(ctx, f.post.ID, "ghost", "hi")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityUser))
}

func TestUpdateComment_AuthorOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c, err := f.comments.CreateComment(ctx, f.post.ID, "bob", "typo")
	require.NoError(t, err)

	_, err = f.comments.UpdateComment(ctx, c.ID, "carol", "hijack")
	assert.ErrorIs(t, err, apperr.ErrNotAuthor)

	updated, err := f.comments.UpdateComment(ctx, c.ID, "bob", "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", updated.Text)
}

func TestDeleteComment_UnlinksFromPost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c1, err := f.comments.CreateComment(ctx, f.post.ID, "bob", "one")
	require.NoError(t, err)
	c2, err := f.comments.CreateComment(ctx, f.post.ID, "bob", "two")
	require.NoError(t, err)
	_, err = f.comments.CreateReply(ctx, c1.ID, "carol", "reply")
	require.NoError(t, err)

	require.NoError(t, f.comments.DeleteComment(ctx, c1.ID))

	assert.Equal(t, []string{c2.ID}, f.reloadPost(t).Comments)
	_, err = f.comments.GetComment(ctx, c1.ID)
	assert.True(t, apperr.IsNotFound(err, apperr.EntityComment))

	err = f.comments.DeleteComment(ctx, c1.ID)
	assert.True(t, apperr.IsNotFound(err, apperr.EntityComment))
}

func TestLikeDislikeComment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c, err := f.comments.CreateComment(ctx, f.post.ID, "bob", "like me")
	require.NoError(t, err)

	liked, err := f.comments.LikeComment(ctx, c.ID, "alice")
	require.NoError(t, err)
	assert.True(t, liked.LikedBy("alice"))

	_, err = f.comments.LikeComment(ctx, c.ID, "alice")
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

	disliked, err := f.comments.DislikeComment(ctx, c.ID, "alice")
	require.NoError(t, err)
	assert.False(t, disliked.LikedBy("alice"))

	_, err = f.comments.DislikeComment(ctx, c.ID, "alice")
	assert.ErrorIs(t, err, apperr.ErrNotLiked)
}

func TestReplies_AddressedByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c, err := f.comments.CreateComment(ctx, f.post.ID, "alice", "thread")
	require.NoError(t, err)
	r1, err := f.comments.CreateReply(ctx, c.ID, "bob", "r1")
	require.NoError(t, err)
	r2, err := f.comments.CreateReply(ctx, c.ID, "carol", "r2")
	require.NoError(t, err)
	r3, err := f.comments.CreateReply(ctx, c.ID, "bob", "r3")
	require.NoError(t, err)

	_, err = f.comments.LikeReply(ctx, c.ID, r3.ID, "alice")
	require.NoError(t, err)

	// Deleting the middle reply must not shift likes or edits onto its neighbours
	require.NoError(t, f.comments.DeleteReply(ctx, c.ID, r2.ID))

	updated, err := f.comments.UpdateReply(ctx, c.ID, r3.ID, "bob", "r3 edited")
	require.NoError(t, err)
	require.Len(t, updated.Replies, 2)
	assert.Equal(t, r1.ID, updated.Replies[0].ID)
	assert.Equal(t, "r1", updated.Replies[0].Text)
	assert.Empty(t, updated.Replies[0].Likes)
	assert.Equal(t, r3.ID, updated.Replies[1].ID)
	assert.Equal(t, "r3 edited", updated.Replies[1].Text)
	assert.Equal(t, []string{"alice"}, updated.Replies[1].Likes)

	err = f.comments.DeleteReply(ctx, c.ID, r2.ID)
	assert.True(t, apperr.IsNotFound(err, apperr.EntityReply))
}

func TestReplies_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c, err := f.comments.CreateComment(ctx, f.post.ID, "alice", "thread")
	require.NoError(t, err)
	r, err := f.comments.CreateReply(ctx, c.ID, "bob", "reply")
	require.NoError(t, err)

	_, err = f.comments.UpdateReply(ctx, c.ID, r.ID, "carol", "not mine")
	assert.ErrorIs(t, err, apperr.ErrNotAuthor)

	_, err = f.comments.LikeReply(ctx, c.ID, "missing", "alice")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityReply))

	_, err = f.comments.DislikeReply(ctx, c.ID, r.ID, "alice")
	assert.ErrorIs(t, err, apperr.ErrNotLiked)

	_, err = f.comments.LikeReply(ctx, c.ID, r.ID, "alice")
	require.NoError(t, err)
	_, err = f.comments.LikeReply(ctx, c.ID, r.ID, "alice")
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)

	_, err = f.comments.CreateReply(ctx, "missing", "bob", "orphan")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityComment))

	_, err = f.comments.CreateReply(ctx, c.ID, "bob", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
