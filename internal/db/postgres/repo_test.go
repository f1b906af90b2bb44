package postgres

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/comments"
	"Murmur/internal/core/posts"
	"Murmur/internal/core/stories"
	"Murmur/internal/core/users"
	"Murmur/internal/db/migrations"
)

// setupTestDB connects to TEST_DATABASE_URL, runs migrations and empties every table
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping PostgreSQL integration test")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(db), "Failed to run migrations")

	_, err = db.Exec(`TRUNCATE users, posts, comments, comment_replies, stories`)
	require.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, repo users.Repository, id string) {
	t.Helper()
	_, err := repo.Create(context.Background(), &users.User{
		ID:           id,
		Username:     id,
		Email:        id + "@example.com",
		PasswordHash: "x",
	})
	require.NoError(t, err)
}

func TestUserRepo_CreateAndConflicts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	createTestUser(t, repo, "alice")

	u, err := repo.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotNil(t, u.Followers)

	_, err = repo.Create(ctx, &users.User{ID: "x", Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	var exists *apperr.AlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "username", exists.Field)

	_, err = repo.GetByID(ctx, "ghost")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityUser))

	byLogin, err := repo.GetByLogin(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", byLogin.ID)
}

func TestUserRepo_SetPrimitives(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	createTestUser(t, repo, "alice")

	changed, err := repo.AddToSet(ctx, "alice", users.SetFollowing, "bob")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.AddToSet(ctx, "alice", users.SetFollowing, "bob")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.RemoveFromSet(ctx, "alice", users.SetFollowing, "bob")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.RemoveFromSet(ctx, "alice", users.SetFollowing, "bob")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = repo.AddToSet(ctx, "ghost", users.SetFollowing, "bob")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityUser))
}

func TestUserRepo_AddFollowingRespectsBlockList(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	createTestUser(t, repo, "alice")

	added, blocked, err := repo.AddFollowing(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, added)
	assert.False(t, blocked)

	added, blocked, err = repo.AddFollowing(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, blocked)

	_, err = repo.AddToSet(ctx, "alice", users.SetBlockList, "carol")
	require.NoError(t, err)
	added, blocked, err = repo.AddFollowing(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.False(t, added)
	assert.True(t, blocked)

	u, err := repo.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, u.Following)

	_, _, err = repo.AddFollowing(ctx, "ghost", "bob")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityUser))
}

func TestUserRepo_ConcurrentAddToSet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	createTestUser(t, repo, "alice")

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			changed, err := repo.AddToSet(ctx, "alice", users.SetFollowers, "bob")
			assert.NoError(t, err)
			if changed {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	u, err := repo.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, u.Followers)
}

func TestUserRepo_ReconcileFollowEdges(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	for _, id := range []string{"alice", "bob", "carol"} {
		createTestUser(t, repo, id)
	}

	_, err := repo.AddToSet(ctx, "alice", users.SetFollowing, "bob")
	require.NoError(t, err)
	_, err = repo.AddToSet(ctx, "carol", users.SetFollowers, "bob")
	require.NoError(t, err)
	_, err = repo.AddToSet(ctx, "bob", users.SetFollowing, "ghost")
	require.NoError(t, err)

	report, err := repo.ReconcileFollowEdges(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.FollowersAdded)
	assert.Equal(t, int64(1), report.FollowersRemoved)
	assert.Equal(t, int64(1), report.FollowingRemoved)

	bob, err := repo.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, bob.Followers)
	assert.Empty(t, bob.Following)
}

func TestPostRepo_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &posts.Post{ID: "p1", UserID: "alice", Caption: "hi", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repo.Create(ctx, &posts.Post{ID: "p2", UserID: "alice", Caption: "again", CreatedAt: now.Add(time.Second), UpdatedAt: now}))

	ids, err := repo.ListIDsByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)

	liked, err := repo.AddLike(ctx, "p1", "bob")
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = repo.AddLike(ctx, "p1", "bob")
	require.NoError(t, err)
	assert.False(t, liked)

	for _, c := range []string{"c1", "c2", "c3"} {
		require.NoError(t, repo.AppendComment(ctx, "p1", c))
	}
	n, err := repo.RemoveCommentRefs(ctx, []string{"c2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c3"}, p.Comments)
	assert.Equal(t, []string{"bob"}, p.Likes)

	n, err = repo.RemoveLikeEverywhere(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.AddLike(ctx, "missing", "bob")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityPost))

	n, err = repo.DeleteByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	err = repo.Delete(ctx, "p1")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityPost))
}

func TestCommentRepo_Replies(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewCommentRepository(db)
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &comments.Comment{ID: "c1", PostID: "p1", UserID: "alice", Text: "t", CreatedAt: now, UpdatedAt: now}))
	for _, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, repo.AddReply(ctx, "c1", &comments.Reply{ID: id, UserID: "bob", Text: id, CreatedAt: now, UpdatedAt: now}))
	}

	err := repo.AddReply(ctx, "missing", &comments.Reply{ID: "r9", UserID: "bob", Text: "x", CreatedAt: now, UpdatedAt: now})
	assert.True(t, apperr.IsNotFound(err, apperr.EntityComment))

	liked, err := repo.AddReplyLike(ctx, "c1", "r3", "alice")
	require.NoError(t, err)
	assert.True(t, liked)

	removed, err := repo.RemoveReply(ctx, "c1", "r2")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = repo.AddReplyLike(ctx, "c1", "r2", "alice")
	assert.True(t, apperr.IsNotFound(err, apperr.EntityReply))

	c, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, c.Replies, 2)
	assert.Equal(t, "r1", c.Replies[0].ID)
	assert.Equal(t, "r3", c.Replies[1].ID)
	assert.Equal(t, []string{"alice"}, c.Replies[1].Likes)

	require.NoError(t, repo.Delete(ctx, "c1"))
	var left int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM comment_replies WHERE comment_id = 'c1'`).Scan(&left))
	assert.Zero(t, left)
}

func TestStoryRepo_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewStoryRepository(db)
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, &stories.Story{ID: "s1", UserID: "alice", Text: "old", CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, &stories.Story{ID: "s2", UserID: "alice", Text: "new", CreatedAt: now.Add(time.Minute)}))

	list, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s2", list[0].ID)

	n, err := repo.DeleteByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
