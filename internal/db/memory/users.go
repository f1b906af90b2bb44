package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"Murmur/internal/core/apperr"
	"Murmur/internal/core/users"
)

type userRepo struct {
	s *Store
}

func cloneUser(u *users.User) *users.User {
	c := *u
	c.Followers = cloneStrings(u.Followers)
	c.Following = cloneStrings(u.Following)
	c.BlockList = cloneStrings(u.BlockList)
	c.Posts = cloneStrings(u.Posts)
	return &c
}

func userSet(u *users.User, field users.SetField) *[]string {
	switch field {
	case users.SetFollowers:
		return &u.Followers
	case users.SetFollowing:
		return &u.Following
	case users.SetBlockList:
		return &u.BlockList
	case users.SetPosts:
		return &u.Posts
	}
	return nil
}

func (r *userRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == user.Username {
			return nil, &apperr.AlreadyExistsError{Entity: apperr.EntityUser, Field: "username", Value: user.Username}
		}
		if existing.Email == user.Email {
			return nil, &apperr.AlreadyExistsError{Entity: apperr.EntityUser, Field: "email", Value: user.Email}
		}
	}
	if _, ok := r.s.users[user.ID]; ok {
		return nil, &apperr.AlreadyExistsError{Entity: apperr.EntityUser, Field: "id", Value: user.ID}
	}

	r.s.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperr.NotFound(apperr.EntityUser, id)
	}
	return cloneUser(u), nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make(map[string]*users.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			result[id] = cloneUser(u)
		}
	}
	return result, nil
}

func (r *userRepo) GetByLogin(ctx context.Context, login string) (*users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == login || u.Email == login {
			return cloneUser(u), nil
		}
	}
	return nil, apperr.NotFound(apperr.EntityUser, login)
}

func (r *userRepo) Search(ctx context.Context, query string, limit int) ([]*users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(query)
	var result []*users.User
	for _, u := range r.s.users {
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.FullName), q) {
			result = append(result, cloneUser(u))
		}
	}
	slices.SortFunc(result, func(a, b *users.User) int { return strings.Compare(a.Username, b.Username) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, id string, input users.UpdateProfileInput) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperr.NotFound(apperr.EntityUser, id)
	}
	if input.FullName != nil {
		u.FullName = *input.FullName
	}
	if input.Bio != nil {
		u.Bio = *input.Bio
	}
	if input.ProfilePicture != nil {
		u.ProfilePicture = *input.ProfilePicture
	}
	if input.CoverPicture != nil {
		u.CoverPicture = *input.CoverPicture
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *userRepo) AddToSet(ctx context.Context, id string, field users.SetField, member string) (bool, error) {
	return r.mutateSet(id, field, func(set *[]string) bool { return addMember(set, member) })
}

func (r *userRepo) AddFollowing(ctx context.Context, actorID, targetID string) (bool, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[actorID]
	if !ok {
		return false, false, apperr.NotFound(apperr.EntityUser, actorID)
	}
	if slices.Contains(u.BlockList, targetID) {
		return false, true, nil
	}
	if !addMember(&u.Following, targetID) {
		return false, false, nil
	}
	u.UpdatedAt = time.Now().UTC()
	return true, false, nil
}

func (r *userRepo) RemoveFromSet(ctx context.Context, id string, field users.SetField, member string) (bool, error) {
	return r.mutateSet(id, field, func(set *[]string) bool { return removeMember(set, member) })
}

func (r *userRepo) mutateSet(id string, field users.SetField, fn func(*[]string) bool) (bool, error) {
	if !field.Valid() {
		return false, apperr.Invalid("field", string(field))
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return false, apperr.NotFound(apperr.EntityUser, id)
	}
	changed := fn(userSet(u, field))
	if changed {
		u.UpdatedAt = time.Now().UTC()
	}
	return changed, nil
}

func (r *userRepo) RemoveMemberEverywhere(ctx context.Context, field users.SetField, member string) (int64, error) {
	if !field.Valid() {
		return 0, apperr.Invalid("field", string(field))
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, u := range r.s.users {
		if removeMember(userSet(u, field), member) {
			n++
		}
	}
	return n, nil
}

func (r *userRepo) ReconcileFollowEdges(ctx context.Context) (*users.ReconcileReport, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	report := &users.ReconcileReport{}
	dangling := func(id string) bool {
		_, ok := r.s.users[id]
		return !ok
	}

	for _, u := range r.s.users {
		before := len(u.Followers)
		u.Followers = slices.DeleteFunc(u.Followers, dangling)
		report.FollowersRemoved += int64(before - len(u.Followers))

		before = len(u.Following)
		u.Following = slices.DeleteFunc(u.Following, dangling)
		report.FollowingRemoved += int64(before - len(u.Following))

		before = len(u.BlockList)
		u.BlockList = slices.DeleteFunc(u.BlockList, dangling)
		report.BlockListRemoved += int64(before - len(u.BlockList))
	}

	// following is authoritative: mirror it into followers
	for _, u := range r.s.users {
		for _, targetID := range u.Following {
			if addMember(&r.s.users[targetID].Followers, u.ID) {
				report.FollowersAdded++
			}
		}
	}

	for _, u := range r.s.users {
		before := len(u.Followers)
		u.Followers = slices.DeleteFunc(u.Followers, func(followerID string) bool {
			return !slices.Contains(r.s.users[followerID].Following, u.ID)
		})
		report.FollowersRemoved += int64(before - len(u.Followers))
	}
	return report, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return apperr.NotFound(apperr.EntityUser, id)
	}
	delete(r.s.users, id)
	return nil
}
