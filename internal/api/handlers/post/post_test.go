package post

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Murmur/internal/api/middleware"
	"Murmur/internal/core/apperr"
	"Murmur/internal/core/posts"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPostService is a mock implementation of posts.Service
type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) CreatePost(ctx context.Context, req posts.CreatePostRequest) (*posts.Post, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posts.Post), args.Error(1)
}

func (m *MockPostService) GetPost(ctx context.Context, id string) (*posts.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posts.Post), args.Error(1)
}

func (m *MockPostService) ListByUser(ctx context.Context, userID string) ([]*posts.Post, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*posts.Post), args.Error(1)
}

func (m *MockPostService) UpdatePost(ctx context.Context, id, caption string) (*posts.Post, error) {
	args := m.Called(ctx, id, caption)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posts.Post), args.Error(1)
}

func (m *MockPostService) DeletePost(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPostService) LikePost(ctx context.Context, postID, userID string) (*posts.Post, error) {
	args := m.Called(ctx, postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posts.Post), args.Error(1)
}

func (m *MockPostService) DislikePost(ctx context.Context, postID, userID string) (*posts.Post, error) {
	args := m.Called(ctx, postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posts.Post), args.Error(1)
}

func newRequest(method, target, body, actorID string, params map[string]string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if actorID != "" {
		ctx = middleware.SetTestUserID(ctx, actorID)
	}
	return r.WithContext(ctx)
}

func TestHandleCreate(t *testing.T) {
	svc := new(MockPostService)
	h := NewHandler(svc)

	svc.On("CreatePost", mock.Anything, posts.CreatePostRequest{UserID: "u1", Caption: "hi", Media: []string{"a.jpg"}}).
		Return(&posts.Post{ID: "p1", UserID: "u1", Caption: "hi"}, nil)

	w := httptest.NewRecorder()
	h.HandleCreate(w, newRequest(http.MethodPost, "/api/posts",
		`{"caption":"hi","media":["a.jpg"]}`, "u1", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestHandleCreate_RejectsClientOwner(t *testing.T) {
	svc := new(MockPostService)
	h := NewHandler(svc)

	w := httptest.NewRecorder()
	h.HandleCreate(w, newRequest(http.MethodPost, "/api/posts",
		`{"caption":"hi","userId":"someone-else"}`, "u1", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
}

func TestHandleCreate_Validation(t *testing.T) {
	svc := new(MockPostService)
	h := NewHandler(svc)

	svc.On("CreatePost", mock.Anything, mock.Anything).Return(nil, apperr.Invalid("caption", "too long"))

	w := httptest.NewRecorder()
	h.HandleCreate(w, newRequest(http.MethodPost, "/api/posts", `{"caption":"x"}`, "u1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.HandleCreate(w, newRequest(http.MethodPost, "/api/posts", `{not json`, "u1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleUpdate_OwnerOnly(t *testing.T) {
	svc := new(MockPostService)
	h := NewHandler(svc)

	svc.On("GetPost", mock.Anything, "p1").Return(&posts.Post{ID: "p1", UserID: "u1"}, nil)
	svc.On("UpdatePost", mock.Anything, "p1", "new").Return(&posts.Post{ID: "p1", UserID: "u1", Caption: "new"}, nil).Once()

	w := httptest.NewRecorder()
	h.HandleUpdate(w, newRequest(http.MethodPut, "/api/posts/p1", `{"caption":"new"}`, "u1",
		map[string]string{"postID": "p1"}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.HandleUpdate(w, newRequest(http.MethodPut, "/api/posts/p1", `{"caption":"new"}`, "u2",
		map[string]string{"postID": "p1"}))
	assert.Equal(t, http.StatusForbidden, w.Code)

	svc.AssertExpectations(t)
}

func TestHandleDelete(t *testing.T) {
	svc := new(MockPostService)
	h := NewHandler(svc)

	svc.On("GetPost", mock.Anything, "p1").Return(&posts.Post{ID: "p1", UserID: "u1"}, nil)
	svc.On("GetPost", mock.Anything, "missing").Return(nil, apperr.NotFound(apperr.EntityPost, "missing"))
	svc.On("DeletePost", mock.Anything, "p1").Return(nil).Once()

	w := httptest.NewRecorder()
	h.HandleDelete(w, newRequest(http.MethodDelete, "/api/posts/p1", "", "u1", map[string]string{"postID": "p1"}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.HandleDelete(w, newRequest(http.MethodDelete, "/api/posts/p1", "", "u2", map[string]string{"postID": "p1"}))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	h.HandleDelete(w, newRequest(http.MethodDelete, "/api/posts/missing", "", "u1", map[string]string{"postID": "missing"}))
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}

func TestHandleLikeDislike(t *testing.T) {
	svc := new(MockPostService)
	h := NewHandler(svc)

	svc.On("LikePost", mock.Anything, "p1", "u2").Return(&posts.Post{ID: "p1", Likes: []string{"u2"}}, nil).Once()
	svc.On("LikePost", mock.Anything, "p1", "u2").
		Return(nil, &apperr.AlreadyLikedError{Entity: apperr.EntityPost, ID: "p1", UserID: "u2"}).Once()
	svc.On("DislikePost", mock.Anything, "p1", "u3").
		Return(nil, &apperr.NotLikedError{Entity: apperr.EntityPost, ID: "p1", UserID: "u3"})

	params := map[string]string{"postID": "p1"}

	w := httptest.NewRecorder()
	h.HandleLike(w, newRequest(http.MethodPost, "/api/posts/p1/like", "", "u2", params))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.HandleLike(w, newRequest(http.MethodPost, "/api/posts/p1/like", "", "u2", params))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	h.HandleDislike(w, newRequest(http.MethodPost, "/api/posts/p1/dislike", "", "u3", params))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "NotLiked")

	w = httptest.NewRecorder()
	h.HandleLike(w, newRequest(http.MethodPost, "/api/posts/p1/like", "", "", params))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	svc.AssertExpectations(t)
}

func TestHandleListByUser(t *testing.T) {
	svc := new(MockPostService)
	h := NewHandler(svc)

	svc.On("ListByUser", mock.Anything, "u1").Return(nil, nil)

	w := httptest.NewRecorder()
	h.HandleListByUser(w, newRequest(http.MethodGet, "/api/users/u1/posts", "", "", map[string]string{"userID": "u1"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
