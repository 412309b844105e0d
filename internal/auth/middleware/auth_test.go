package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/projecthub-dev/projecthub-backend/internal/auth"
)

type stubVerifier struct {
	accept string
	id     *auth.Identity
	err    error
}

func (s stubVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != s.accept {
		return nil, auth.ErrInvalidToken
	}
	return s.id, nil
}

func newRouter(verifiers ...auth.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireUser(verifiers...), func(c *gin.Context) {
		id, _ := auth.CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user_id": auth.UserID(c), "email": id.Email})
	})
	return r
}

func TestRequireUser(t *testing.T) {
	local := stubVerifier{accept: "local-token", id: &auth.Identity{UserID: "u1"}}
	firebase := stubVerifier{accept: "fb-token", id: &auth.Identity{UserID: "u2", Email: "b@x.io", FirebaseUID: "fb"}}
	r := newRouter(local, firebase)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, `"code":"auth/unauthenticated"`},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, `"ok":false`},
		{"first verifier", "Bearer local-token", http.StatusOK, `"user_id":"u1"`},
		{"second verifier", "Bearer fb-token", http.StatusOK, `"email":"b@x.io"`},
		{"rejected by all", "Bearer nope", http.StatusUnauthorized, `"type":"general"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRequireUser_LocalizedMessage(t *testing.T) {
	r := newRouter()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Accept-Language", "pt-BR")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Faça login para continuar")
}

func TestRequireUser_VerifierFailure(t *testing.T) {
	r := newRouter(stubVerifier{err: errors.New("db down")})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireUser_AccountConflict(t *testing.T) {
	taken := auth.NewError(auth.CodeEmailAlreadyInUse, errors.New("email already registered"))
	r := newRouter(stubVerifier{err: taken})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"auth/email-already-in-use"`)
}
