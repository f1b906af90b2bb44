package posts_test

import (
	"context"
	"strings"
	"sync"
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
	posts    posts.Service
	comments comments.Service
}

func newFixture(t *testing.T, userIDs ...string) *fixture {
	t.Helper()
	store := memory.NewStore()
	for _, id := range userIDs {
		_, err := store.Users().Create(context.Background(), &users.User{
			ID: id, Username: id, Email: id + "@example.com",
			Followers: []string{}, Following: []string{}, BlockList: []string{}, Posts: []string{},
		})
		require.NoError(t, err)
	}
	return &fixture{
		store:    store,
		posts:    posts.NewPostService(store.Posts(), store.Users(), store.Comments(), nil),
		comments: comments.NewCommentService(store.Comments(), store.Posts(), store.Users(), nil),
	}
}

func TestCreatePost_IndexesOnOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")

	p1, err := f.posts.CreatePost(ctx, posts.CreatePostRequest{UserID: "alice", Caption: "first"})
	require.NoError(t, err)
	p2, err := f.posts.CreatePost(ctx, posts.CreatePostRequest{UserID: "alice", Media: []string{"img/1.jpg"}})
	require.NoError(t, err)

	alice, err := f.store.Users().GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{p1.ID, p2.ID}, alice.Posts)

	listed, err := f.posts.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, p1.ID, listed[0].ID)
}

func TestCreatePost_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")

	_, err := f.posts.CreatePost(ctx, posts.CreatePostRequest{UserID: "alice"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.posts.CreatePost(ctx, posts.CreatePostRequest{UserID: "alice", Caption: strings.Repeat("a", 2201)})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	media := []string{"1", "2", "3", "4", "5", "6"}
	_, err = f.posts.CreatePost(ctx, posts.CreatePostRequest{UserID: "alice", Media: media})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.posts.CreatePost(ctx, posts.CreatePostRequest{UserID: "ghost", Caption: "hi"})
	assert.True(t, apperr.IsNotFound(err, apperr.EntityUser))
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")

	p, err := f.posts.CreatePost(ctx, posts.CreatePostRequest{UserID: "alice", Caption: "draft"})
	require.NoError(t, err)

	updated, err := f.posts.UpdatePost(ctx, p.ID, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Caption)

	_, err = f.posts.UpdatePost(ctx, "missing", "final")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityPost))
}

func TestUpdatePost_CaptionOrMediaRequired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice")

	textOnly, err := f.posts.CreatePost(ctx, posts.CreatePostRequest{UserID: "alice", Caption: "words"})
	require.NoError(t, err)
	withMedia, err := f.posts.CreatePost(ctx, posts.CreatePostRequest{
		UserID: "alice", Caption: "pic", Media: []string{"img/1.jpg"},
	})
	require.NoError(t, err)

	_, err = f.posts.UpdatePost(ctx, textOnly.ID, "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	kept, err := f.posts.GetPost(ctx, textOnly.ID)
	require.NoError(t, err)
	assert.Equal(t, "words", kept.Caption)

	cleared, err := f.posts.UpdatePost(ctx, withMedia.ID, "")
	require.NoError(t, err)
	assert.Empty(t, cleared.Caption)
	assert.Equal(t, []string{"img/1.jpg"}, cleared.Media)

	_, err = f.posts.UpdatePost(ctx, "missing", "")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityPost))
}

func TestDeletePost_RemovesCommentsAndIndex(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	p, err := f.posts.CreatePost(ctx, posts.CreatePostRequest{UserID: "alice", Caption: "hello"})
	require.NoError(t, err)
	c, err := f.comments.CreateComment(ctx, p.ID, "bob", "nice")
	require.NoError(t, err)

	require.NoError(t, f.posts.DeletePost(ctx, p.ID))

	_, err = f.posts.GetPost(ctx, p.ID)
	assert.True(t, apperr.IsNotFound(err, apperr.EntityPost))
	_, err = f.comments.GetComment(ctx, c.ID)
	assert.True(t, apperr.IsNotFound(err, apperr.EntityComment))

	alice, err := f.store.Users().GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, alice.Posts)

	err = f.posts.DeletePost(ctx, p.ID)
	assert.True(t, apperr.IsNotFound(err, apperr.EntityPost))
}

func TestLikeDislikePost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	p, err := f.posts.CreatePost(ctx, posts.CreatePostRequest{UserID: "alice", Caption: "hello"})
	require.NoError(t, err)

	liked, err := f.posts.LikePost(ctx, p.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, liked.Likes)

	_, err = f.posts.LikePost(ctx, p.ID, "bob")
	var already *apperr.AlreadyLikedError
	assert.ErrorAs(t, err, &already)

	disliked, err := f.posts.DislikePost(ctx, p.ID, "bob")
	require.NoError(t, err)
	assert.Empty(t, disliked.Likes)

	_, err = f.posts.DislikePost(ctx, p.ID, "bob")
	assert.ErrorIs(t, err, apperr.ErrNotLiked)

	_, err = f.posts.LikePost(ctx, p.ID, "ghost")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityUser))

	_, err = f.posts.LikePost(ctx, "missing", "bob")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityPost))
}

func TestLikePost_ConcurrentLikesAreNotLost(t *testing.T) {
	ctx := context.Background()
	likers := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"}
	f := newFixture(t, append([]string{"alice"}, likers...)...)

	p, err := f.posts.CreatePost(ctx, posts.CreatePostRequest{UserID: "alice", Caption: "race"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range likers {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := f.posts.LikePost(ctx, p.ID, userID)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	got, err := f.posts.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, likers, got.Likes)
}
