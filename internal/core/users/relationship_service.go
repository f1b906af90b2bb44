package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"Murmur/internal/core/apperr"
)

type relationshipService struct {
	repo     Repository
	profiles *ProfileCache
	logger   *slog.Logger
}

// NewRelationshipService creates the follow/block manager.
// profiles may be nil to disable enrichment caching.
func NewRelationshipService(repo Repository, profiles *ProfileCache, logger *slog.Logger) RelationshipService {
	if logger == nil {
		logger = slog.Default()
	}
	return &relationshipService{
		repo:     repo,
		profiles: profiles,
		logger:   logger,
	}
}

// loadPair fetches both users, reporting the first missing one
func (s *relationshipService) loadPair(ctx context.Context, action, actorID, targetID string) (*User, *User, error) {
	if actorID == targetID {
		return nil, nil, &apperr.SelfReferenceError{Action: action, UserID: actorID}
	}

	actor, err := s.repo.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	return actor, target, nil
}

// Follow adds targetID to actor's following and actorID to target's followers.
// The actor side is written first, conditional on the block list; if the target
// side fails, the actor edge is removed again on a best-effort basis.
func (s *relationshipService) Follow(ctx context.Context, actorID, targetID string) error {
	if _, _, err := s.loadPair(ctx, "follow", actorID, targetID); err != nil {
		return err
	}

	added, blocked, err := s.repo.AddFollowing(ctx, actorID, targetID)
	if err != nil {
		return fmt.Errorf("failed to add following edge: %w", err)
	}
	if blocked {
		return &apperr.BlockedError{ActorID: actorID, TargetID: targetID}
	}
	if !added {
		return &apperr.AlreadyFollowingError{ActorID: actorID, TargetID: targetID}
	}

	if _, err := s.repo.AddToSet(ctx, targetID, SetFollowers, actorID); err != nil {
		s.compensate(ctx, "follow", actorID, targetID, func(ctx context.Context) error {
			_, err := s.repo.RemoveFromSet(ctx, actorID, SetFollowing, targetID)
			return err
		})
		return fmt.Errorf("failed to add follower edge: %w", err)
	}

	// A Block that landed after the following write may already have severed
	// edges, so the follower entry just written would outlive it.
	actor, err := s.repo.GetByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to recheck block list: %w", err)
	}
	if actor.HasBlocked(targetID) {
		s.compensate(ctx, "follow", actorID, targetID, func(ctx context.Context) error {
			if _, err := s.repo.RemoveFromSet(ctx, actorID, SetFollowing, targetID); err != nil {
				return err
			}
			_, err := s.repo.RemoveFromSet(ctx, targetID, SetFollowers, actorID)
			return err
		})
		return &apperr.BlockedError{ActorID: actorID, TargetID: targetID}
	}

	s.logger.Info("user followed",
		slog.String("actor", actorID),
		slog.String("target", targetID))
	return nil
}

// Unfollow removes the symmetric follow edge pair
func (s *relationshipService) Unfollow(ctx context.Context, actorID, targetID string) error {
	if _, _, err := s.loadPair(ctx, "unfollow", actorID, targetID); err != nil {
		return err
	}

	removed, err := s.repo.RemoveFromSet(ctx, actorID, SetFollowing, targetID)
	if err != nil {
		return fmt.Errorf("failed to remove following edge: %w", err)
	}
	if !removed {
		return &apperr.NotFollowingError{ActorID: actorID, TargetID: targetID}
	}

	if _, err := s.repo.RemoveFromSet(ctx, targetID, SetFollowers, actorID); err != nil {
		s.compensate(ctx, "unfollow", actorID, targetID, func(ctx context.Context) error {
			_, err := s.repo.AddToSet(ctx, actorID, SetFollowing, targetID)
			return err
		})
		return fmt.Errorf("failed to remove follower edge: %w", err)
	}

	s.logger.Info("user unfollowed",
		slog.String("actor", actorID),
		slog.String("target", targetID))
	return nil
}

// Block adds targetID to actor's block list and severs follow edges in both directions.
// Edge removal is idempotent: a missing edge is not an error here.
func (s *relationshipService) Block(ctx context.Context, actorID, targetID string) error {
	if _, _, err := s.loadPair(ctx, "block", actorID, targetID); err != nil {
		return err
	}

	added, err := s.repo.AddToSet(ctx, actorID, SetBlockList, targetID)
	if err != nil {
		return fmt.Errorf("failed to add block: %w", err)
	}
	if !added {
		return &apperr.AlreadyBlockedError{ActorID: actorID, TargetID: targetID}
	}

	severs := []struct {
		userID string
		field  SetField
		member string
	}{
		{actorID, SetFollowing, targetID},
		{targetID, SetFollowers, actorID},
		{targetID, SetFollowing, actorID},
		{actorID, SetFollowers, targetID},
	}
	for _, sv := range severs {
		if _, err := s.repo.RemoveFromSet(ctx, sv.userID, sv.field, sv.member); err != nil {
			// The block itself is durable; remaining edges are removed on retry or by reconciliation
			return fmt.Errorf("failed to sever %s edge of %s: %w", sv.field, sv.userID, err)
		}
	}

	s.logger.Info("user blocked",
		slog.String("actor", actorID),
		slog.String("target", targetID))
	return nil
}

// Unblock removes targetID from actor's block list. Follow edges are not restored.
func (s *relationshipService) Unblock(ctx context.Context, actorID, targetID string) error {
	if _, _, err := s.loadPair(ctx, "unblock", actorID, targetID); err != nil {
		return err
	}

	removed, err := s.repo.RemoveFromSet(ctx, actorID, SetBlockList, targetID)
	if err != nil {
		return fmt.Errorf("failed to remove block: %w", err)
	}
	if !removed {
		return &apperr.NotBlockedError{ActorID: actorID, TargetID: targetID}
	}

	s.logger.Info("user unblocked",
		slog.String("actor", actorID),
		slog.String("target", targetID))
	return nil
}

func (s *relationshipService) ListBlocked(ctx context.Context, userID string) ([]ProfileView, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make(map[string]ProfileView, len(user.BlockList))
	var missing []string
	for _, id := range user.BlockList {
		if v, ok := s.profiles.Get(id); ok {
			views[id] = v
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		found, err := s.repo.GetByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to load blocked users: %w", err)
		}
		for id, u := range found {
			v := u.View()
			views[id] = v
			s.profiles.Add(v)
		}
	}

	result := make([]ProfileView, 0, len(user.BlockList))
	for _, id := range user.BlockList {
		if v, ok := views[id]; ok {
			result = append(result, v)
		}
	}
	return result, nil
}

// compensate undoes the first half of a two-record edge mutation.
// A failure here leaves a one-sided edge for ReconcileFollowEdges.
func (s *relationshipService) compensate(ctx context.Context, action, actorID, targetID string, undo func(context.Context) error) {
	// Run even if the caller's context is already cancelled
	err := undo(context.WithoutCancel(ctx))
	if err == nil {
		return
	}
	level := slog.LevelError
	if errors.Is(err, apperr.ErrNotFound) {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "one-sided edge left for reconciliation",
		slog.String("action", action),
		slog.String("actor", actorID),
		slog.String("target", targetID),
		slog.String("error", err.Error()))
}
