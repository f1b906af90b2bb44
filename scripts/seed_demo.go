//go:build ignore

package main

// Seeds a local Murmur database with a small social graph: a handful of users
// who follow each other, a few posts each, and a comment thread with replies.
//
// Usage: go run scripts/seed_demo.go
// Reads DATABASE_URL from the environment or .env.local / .env.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"Murmur/internal/auth"
	"Murmur/internal/config"
	"Murmur/internal/core/apperr"
	"Murmur/internal/core/comments"
	"Murmur/internal/core/posts"
	"Murmur/internal/core/users"
	"Murmur/internal/db/migrations"
	"Murmur/internal/db/postgres"
)

const demoPassword = "murmur-demo-pass"

var demoUsers = []users.RegisterRequest{
	{Username: "ada", Email: "ada@murmur.local", FullName: "Ada Byron"},
	{Username: "grace", Email: "grace@murmur.local", FullName: "Grace Hopper"},
	{Username: "linus", Email: "linus@murmur.local", FullName: "Linus Pauling"},
	{Username: "rosalind", Email: "rosalind@murmur.local", FullName: "Rosalind Franklin"},
	{Username: "alan", Email: "alan@murmur.local", FullName: "Alan Kay"},
}

var captions = []string{
	"First light over the harbour this morning",
	"Finally finished the bookshelf. Only two screws left over",
	"Anyone else think tabs vs spaces is a solved problem?",
	"Sourdough attempt number four. Getting there",
	"Conference talk slides are up, feedback welcome",
	"The cat has claimed the new keyboard",
	"Rainy Sunday, perfect for reading",
}

var thread = []string{
	"This is great, where was it taken?",
	"Down by the old pier, just after six",
	"Worth the early alarm then",
	"Every time. Bring coffee",
	"Noted. See you there next week?",
}

func main() {
	config.LoadDotEnvs()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	if err := migrations.Up(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Connected to database successfully!")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	userRepo := postgres.NewUserRepository(db)
	postRepo := postgres.NewPostRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	profiles := users.NewProfileCache(0, 0)

	userService := users.NewUserService(userRepo, auth.NewBcryptHasher(bcrypt.DefaultCost), profiles, logger)
	relationships := users.NewRelationshipService(userRepo, profiles, logger)
	postService := posts.NewPostService(postRepo, userRepo, commentRepo, logger)
	commentService := comments.NewCommentService(commentRepo, postRepo, userRepo, logger)

	created := make([]*users.User, 0, len(demoUsers))
	for _, req := range demoUsers {
		req.Password = demoPassword
		user, err := userService.Register(ctx, req)
		if errors.Is(err, apperr.ErrAlreadyExists) {
			user, err = userService.Authenticate(ctx, req.Username, demoPassword)
		}
		if err != nil {
			log.Fatalf("Failed to create user %s: %v", req.Username, err)
		}
		log.Printf("User: %s (%s)", user.Username, user.ID)
		created = append(created, user)
	}

	// Everyone follows the next two users around the ring
	follows := 0
	for i, actor := range created {
		for step := 1; step <= 2; step++ {
			target := created[(i+step)%len(created)]
			err := relationships.Follow(ctx, actor.ID, target.ID)
			if err != nil && !errors.Is(err, apperr.ErrAlreadyExists) {
				log.Fatalf("Failed to follow %s -> %s: %v", actor.Username, target.Username, err)
			}
			if err == nil {
				follows++
			}
		}
	}
	log.Printf("Created %d follow edges", follows)

	var allPosts []*posts.Post
	for _, user := range created {
		for n := 0; n < 2; n++ {
			post, err := postService.CreatePost(ctx, posts.CreatePostRequest{
				UserID:  user.ID,
				Caption: captions[rand.Intn(len(captions))],
				Media:   []string{fmt.Sprintf("https://picsum.photos/seed/%s-%d/800/600", user.Username, n)},
			})
			if err != nil {
				log.Fatalf("Failed to create post for %s: %v", user.Username, err)
			}
			allPosts = append(allPosts, post)
		}
	}
	log.Printf("Created %d posts", len(allPosts))

	// Sprinkle likes from followers
	likes := 0
	for _, post := range allPosts {
		for _, user := range created {
			if user.ID == post.UserID || rand.Intn(2) == 0 {
				continue
			}
			if _, err := postService.LikePost(ctx, post.ID, user.ID); err != nil {
				log.Fatalf("Failed to like post %s: %v", post.ID, err)
			}
			likes++
		}
	}
	log.Printf("Created %d likes", likes)

	// One conversation on the first post: a top-level comment, then replies
	// alternating between the post owner and the commenter.
	target := allPosts[0]
	owner := created[0]
	commenter := created[1]

	comment, err := commentService.CreateComment(ctx, target.ID, commenter.ID, thread[0])
	if err != nil {
		log.Fatalf("Failed to create comment: %v", err)
	}
	for i, text := range thread[1:] {
		author := owner
		if i%2 == 1 {
			author = commenter
		}
		if _, err := commentService.CreateReply(ctx, comment.ID, author.ID, text); err != nil {
			log.Fatalf("Failed to create reply %d: %v", i+1, err)
		}
	}
	log.Printf("Created comment %s with %d replies", comment.ID, len(thread)-1)

	log.Println("")
	log.Println("Done! Log in as any of:")
	for _, user := range created {
		log.Printf("  %s / %s", user.Username, demoPassword)
	}
}
