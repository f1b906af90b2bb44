// Package cascade removes a user and every reference to them from the other entities.
//
// There is no cross-entity transaction. Deletion is a fixed sequence of idempotent
// bulk steps; if one fails, the earlier ones stay applied and the sequence can be
// resumed from the failed step.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/comments"
	"Murmur/internal/core/posts"
	"Murmur/internal/core/stories"
	"Murmur/internal/core/users"
)

// Deps are the stores the orchestrator sweeps
type Deps struct {
	Users    users.Repository
	Posts    posts.Repository
	Comments comments.Repository
	Stories  stories.Repository
	// Profiles is optional; the deleted user's cached view is invalidated when set
	Profiles *users.ProfileCache
	Logger   *slog.Logger
}

// Orchestrator runs user deletions
type Orchestrator struct {
	users    users.Repository
	posts    posts.Repository
	comments comments.Repository
	stories  stories.Repository
	profiles *users.ProfileCache
	logger   *slog.Logger
}

// NewOrchestrator creates a deletion orchestrator
func NewOrchestrator(deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		users:    deps.Users,
		posts:    deps.Posts,
		comments: deps.Comments,
		stories:  deps.Stories,
		profiles: deps.Profiles,
		logger:   logger,
	}
}

// DeleteUser verifies the user exists and runs every step in order.
// Returns *apperr.NotFoundError for an unknown user and *StepError for a failed step.
func (o *Orchestrator) DeleteUser(ctx context.Context, userID string) error {
	if _, err := o.users.GetByID(ctx, userID); err != nil {
		return err
	}
	return o.Resume(ctx, userID, StepDeleteOwnedPosts)
}

// Resume runs the steps from `from` through the end. It does not require the
// user record to exist, so an interrupted deletion can always be finished.
func (o *Orchestrator) Resume(ctx context.Context, userID string, from Step) error {
	if !from.Valid() {
		return fmt.Errorf("unknown cascade step %d", int(from))
	}

	start := time.Now()
	for _, step := range Steps {
		if step < from {
			continue
		}
		if err := o.RunStep(ctx, userID, step); err != nil {
			return err
		}
	}

	o.logger.Info("user deleted",
		slog.String("user", userID),
		slog.String("from_step", from.String()),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// RunStep executes one step. Running a step twice has the same effect as running it once.
func (o *Orchestrator) RunStep(ctx context.Context, userID string, step Step) error {
	if err := ctx.Err(); err != nil {
		return &StepError{Step: step, UserID: userID, Err: err}
	}

	var (
		affected int64
		err      error
	)
	switch step {
	case StepDeleteOwnedPosts:
		affected, err = o.deleteOwnedPosts(ctx, userID)
	case StepUnlinkAuthoredComments:
		affected, err = o.unlinkAuthoredComments(ctx, userID)
	case StepRemoveAuthoredReplies:
		affected, err = o.comments.RemoveRepliesByAuthor(ctx, userID)
	case StepDeleteAuthoredComments:
		affected, err = o.comments.DeleteByAuthor(ctx, userID)
	case StepDeleteStories:
		affected, err = o.stories.DeleteByOwner(ctx, userID)
	case StepRemoveLikes:
		affected, err = o.removeLikes(ctx, userID)
	case StepSeverEdges:
		affected, err = o.severEdges(ctx, userID)
	case StepDeleteUser:
		affected, err = o.deleteUserRecord(ctx, userID)
	default:
		err = fmt.Errorf("unknown cascade step %d", int(step))
	}

	if err != nil {
		o.logger.Error("cascade step failed",
			slog.String("user", userID),
			slog.String("step", step.String()),
			slog.String("error", err.Error()))
		return &StepError{Step: step, UserID: userID, Err: err}
	}

	o.logger.Debug("cascade step completed",
		slog.String("user", userID),
		slog.String("step", step.String()),
		slog.Int64("affected", affected))
	return nil
}

// deleteOwnedPosts purges comments before posts so an interruption never
// strands comments whose post is gone and can no longer be found by owner
func (o *Orchestrator) deleteOwnedPosts(ctx context.Context, userID string) (int64, error) {
	postIDs, err := o.posts.ListIDsByOwner(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list owned posts: %w", err)
	}
	if len(postIDs) == 0 {
		return 0, nil
	}
	if _, err := o.comments.DeleteByPosts(ctx, postIDs); err != nil {
		return 0, fmt.Errorf("failed to delete comments of owned posts: %w", err)
	}
	n, err := o.posts.DeleteByOwner(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete owned posts: %w", err)
	}
	return n, nil
}

func (o *Orchestrator) unlinkAuthoredComments(ctx context.Context, userID string) (int64, error) {
	commentIDs, err := o.comments.ListIDsByAuthor(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list authored comments: %w", err)
	}
	if len(commentIDs) == 0 {
		return 0, nil
	}
	return o.posts.RemoveCommentRefs(ctx, commentIDs)
}

func (o *Orchestrator) removeLikes(ctx context.Context, userID string) (int64, error) {
	fromPosts, err := o.posts.RemoveLikeEverywhere(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove post likes: %w", err)
	}
	fromComments, err := o.comments.RemoveLikeEverywhere(ctx, userID)
	if err != nil {
		return fromPosts, fmt.Errorf("failed to remove comment and reply likes: %w", err)
	}
	return fromPosts + fromComments, nil
}

// severEdges sweeps every user rather than only those listed on the deleted
// user, which also clears one-sided edges left by interrupted follows
func (o *Orchestrator) severEdges(ctx context.Context, userID string) (int64, error) {
	var total int64
	for _, field := range users.EdgeFields {
		n, err := o.users.RemoveMemberEverywhere(ctx, field, userID)
		if err != nil {
			return total, fmt.Errorf("failed to sweep %s: %w", field, err)
		}
		total += n
	}
	return total, nil
}

func (o *Orchestrator) deleteUserRecord(ctx context.Context, userID string) (int64, error) {
	err := o.users.Delete(ctx, userID)
	o.profiles.Invalidate(userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return 1, nil
}
