package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver struct {
	token  string
	userID int64
}

func (r staticResolver) Resolve(ctx context.Context, token string) (int64, error) {
	if token != r.token {
		return 0, errors.New("invalid token")
	}
	return r.userID, nil
}

func newProtected(resolver TokenResolver) (http.Handler, *int64) {
	var seen int64
	handler := Auth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		if ok {
			seen = userID
		}
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &seen
}

func TestAuth_MissingHeader(t *testing.T) {
	t.Parallel()

	handler, _ := newProtected(staticResolver{token: "abc", userID: 1})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_WrongScheme(t *testing.T) {
	t.Parallel()

	handler, _ := newProtected(staticResolver{token: "abc", userID: 1})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_UnknownToken(t *testing.T) {
	t.Parallel()

	handler, _ := newProtected(staticResolver{token: "abc", userID: 1})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token nope")

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidTokenSetsUserID(t *testing.T) {
	t.Parallel()

	handler, seen := newProtected(staticResolver{token: "abc", userID: 7})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), *seen)
}
