package comments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Murmur/internal/api/middleware"
	"Murmur/internal/core/apperr"
	"Murmur/internal/core/comments"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCommentService is a mock implementation of comments.Service
type MockCommentService struct {
	mock.Mock
}

func commentResult(args mock.Arguments) (*comments.Comment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*comments.Comment), args.Error(1)
}

func (m *MockCommentService) CreateComment(ctx context.Context, postID, userID, text string) (*comments.Comment, error) {
	return commentResult(m.Called(ctx, postID, userID, text))
}

func (m *MockCommentService) GetComment(ctx context.Context, id string) (*comments.Comment, error) {
	return commentResult(m.Called(ctx, id))
}

func (m *MockCommentService) ListByPost(ctx context.Context, postID string) ([]*comments.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*comments.Comment), args.Error(1)
}

func (m *MockCommentService) UpdateComment(ctx context.Context, commentID, actingUserID, text string) (*comments.Comment, error) {
	return commentResult(m.Called(ctx, commentID, actingUserID, text))
}

func (m *MockCommentService) DeleteComment(ctx context.Context, commentID string) error {
	return m.Called(ctx, commentID).Error(0)
}

func (m *MockCommentService) LikeComment(ctx context.Context, commentID, userID string) (*comments.Comment, error) {
	return commentResult(m.Called(ctx, commentID, userID))
}

func (m *MockCommentService) DislikeComment(ctx context.Context, commentID, userID string) (*comments.Comment, error) {
	return commentResult(m.Called(ctx, commentID, userID))
}

func (m *MockCommentService) CreateReply(ctx context.Context, commentID, userID, text string) (*comments.Reply, error) {
	args := m.Called(ctx, commentID, userID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*comments.Reply), args.Error(1)
}

func (m *MockCommentService) UpdateReply(ctx context.Context, commentID, replyID, actingUserID, text string) (*comments.Comment, error) {
	return commentResult(m.Called(ctx, commentID, replyID, actingUserID, text))
}

func (m *MockCommentService) DeleteReply(ctx context.Context, commentID, replyID string) error {
	return m.Called(ctx, commentID, replyID).Error(0)
}

func (m *MockCommentService) LikeReply(ctx context.Context, commentID, replyID, userID string) (*comments.Comment, error) {
	return commentResult(m.Called(ctx, commentID, replyID, userID))
}

func (m *MockCommentService) DislikeReply(ctx context.Context, commentID, replyID, userID string) (*comments.Comment, error) {
	return commentResult(m.Called(ctx, commentID, replyID, userID))
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
	svc := new(MockCommentService)
	h := NewHandler(svc)

	svc.On("CreateComment", mock.Anything, "p1", "u1", "nice").
		Return(&comments.Comment{ID: "c1", PostID: "p1", UserID: "u1", Text: "nice"}, nil)
	svc.On("CreateComment", mock.Anything, "missing", "u1", "nice").
		Return(nil, apperr.NotFound(apperr.EntityPost, "missing"))

	w := httptest.NewRecorder()
	h.HandleCreate(w, newRequest(http.MethodPost, "/api/posts/p1/comments", `{"text":"nice"}`, "u1",
		map[string]string{"postID": "p1"}))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	h.HandleCreate(w, newRequest(http.MethodPost, "/api/posts/missing/comments", `{"text":"nice"}`, "u1",
		map[string]string{"postID": "missing"}))
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}

func TestHandleListByPost(t *testing.T) {
	svc := new(MockCommentService)
	h := NewHandler(svc)

	svc.On("ListByPost", mock.Anything, "p1").Return([]*comments.Comment{{ID: "c1"}, {ID: "c2"}}, nil)

	w := httptest.NewRecorder()
	h.HandleListByPost(w, newRequest(http.MethodGet, "/api/posts/p1/comments", "", "", map[string]string{"postID": "p1"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"c2"`)
}

func TestHandleUpdate_NotAuthor(t *testing.T) {
	svc := new(MockCommentService)
	h := NewHandler(svc)

	svc.On("UpdateComment", mock.Anything, "c1", "u2", "edit").
		Return(nil, &apperr.NotAuthorError{Entity: apperr.EntityComment, ID: "c1", UserID: "u2"})

	w := httptest.NewRecorder()
	h.HandleUpdate(w, newRequest(http.MethodPut, "/api/comments/c1", `{"text":"edit"}`, "u2",
		map[string]string{"commentID": "c1"}))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "NotAuthorized")
}

func TestHandleDelete(t *testing.T) {
	svc := new(MockCommentService)
	h := NewHandler(svc)

	svc.On("GetComment", mock.Anything, "c1").Return(&comments.Comment{ID: "c1", UserID: "u1"}, nil)
	svc.On("DeleteComment", mock.Anything, "c1").Return(nil).Once()

	params := map[string]string{"commentID": "c1"}

	w := httptest.NewRecorder()
	h.HandleDelete(w, newRequest(http.MethodDelete, "/api/comments/c1", "", "u2", params))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	h.HandleDelete(w, newRequest(http.MethodDelete, "/api/comments/c1", "", "u1", params))
	assert.Equal(t, http.StatusOK, w.Code)

	svc.AssertExpectations(t)
}

func TestHandleLikeComment(t *testing.T) {
	svc := new(MockCommentService)
	h := NewHandler(svc)

	svc.On("LikeComment", mock.Anything, "c1", "u2").
		Return(&comments.Comment{ID: "c1", Likes: []string{"u2"}}, nil)
	svc.On("DislikeComment", mock.Anything, "c1", "u3").
		Return(nil, &apperr.NotLikedError{Entity: apperr.EntityComment, ID: "c1", UserID: "u3"})

	params := map[string]string{"commentID": "c1"}

	w := httptest.NewRecorder()
	h.HandleLike(w, newRequest(http.MethodPost, "/api/comments/c1/like", "", "u2", params))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.HandleDislike(w, newRequest(http.MethodPost, "/api/comments/c1/dislike", "", "u3", params))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleCreateReply(t *testing.T) {
	svc := new(MockCommentService)
	h := NewHandler(svc)

	svc.On("CreateReply", mock.Anything, "c1", "u2", "thanks").
		Return(&comments.Reply{ID: "r1", UserID: "u2", Text: "thanks"}, nil)

	w := httptest.NewRecorder()
	h.HandleCreateReply(w, newRequest(http.MethodPost, "/api/comments/c1/replies", `{"text":"thanks"}`, "u2",
		map[string]string{"commentID": "c1"}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"r1"`)
}

func TestHandleUpdateReply(t *testing.T) {
	svc := new(MockCommentService)
	h := NewHandler(svc)

	svc.On("UpdateReply", mock.Anything, "c1", "r1", "u2", "edited").
		Return(&comments.Comment{ID: "c1", Replies: []comments.Reply{{ID: "r1", Text: "edited"}}}, nil)

	w := httptest.NewRecorder()
	h.HandleUpdateReply(w, newRequest(http.MethodPut, "/api/comments/c1/replies/r1", `{"text":"edited"}`, "u2",
		map[string]string{"commentID": "c1", "replyID": "r1"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "edited")
}

func TestHandleDeleteReply(t *testing.T) {
	svc := new(MockCommentService)
	h := NewHandler(svc)

	svc.On("GetComment", mock.Anything, "c1").Return(&comments.Comment{
		ID:      "c1",
		UserID:  "u1",
		Replies: []comments.Reply{{ID: "r1", UserID: "u2"}},
	}, nil)
	svc.On("DeleteReply", mock.Anything, "c1", "r1").Return(nil).Once()

	tests := []struct {
		name       string
		actor      string
		replyID    string
		wantStatus int
	}{
		{"missing reply", "u2", "r9", http.StatusNotFound},
		{"not author", "u1", "r1", http.StatusForbidden},
		{"author", "u2", "r1", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleDeleteReply(w, newRequest(http.MethodDelete, "/api/comments/c1/replies/"+tt.replyID, "", tt.actor,
				map[string]string{"commentID": "c1", "replyID": tt.replyID}))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	svc.AssertExpectations(t)
}

func TestHandleLikeReply(t *testing.T) {
	svc := new(MockCommentService)
	h := NewHandler(svc)

	svc.On("LikeReply", mock.Anything, "c1", "r1", "u3").
		Return(nil, &apperr.AlreadyLikedError{Entity: apperr.EntityReply, ID: "r1", UserID: "u3"})
	svc.On("DislikeReply", mock.Anything, "c1", "r1", "u3").
		Return(&comments.Comment{ID: "c1"}, nil)

	params := map[string]string{"commentID": "c1", "replyID": "r1"}

	w := httptest.NewRecorder()
	h.HandleLikeReply(w, newRequest(http.MethodPost, "/api/comments/c1/replies/r1/like", "", "u3", params))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	h.HandleDislikeReply(w, newRequest(http.MethodPost, "/api/comments/c1/replies/r1/dislike", "", "u3", params))
	assert.Equal(t, http.StatusOK, w.Code)
}
