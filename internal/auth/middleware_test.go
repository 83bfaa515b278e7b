package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/fuego-api/internal/models"
	"github.com/isdelr/fuego-api/internal/store"
)

type fakeUsers struct {
	users map[int64]models.User
	err   error
	calls int
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (models.User, error) {
	f.calls++
	if f.err != nil {
		return models.User{}, f.err
	}
	user, ok := f.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return user, nil
}

func serve(t *testing.T, mw func(http.Handler) http.Handler, header string) (*httptest.ResponseRecorder, *models.User) {
	t.Helper()
	var seen *models.User
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		seen = &user
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen
}

func TestJWTMiddleware(t *testing.T) {
	t.Parallel()
	codec := NewTokenCodec("FUEGO_TEST", 0)
	alice := models.User{ID: 1, First: "Alice", Email: "alice@mail.net"}
	bob := models.User{ID: 2, First: "Bob", Email: "bob@mail.net"}

	aliceToken, err := codec.Issue(alice.ID)
	require.NoError(t, err)
	bobToken, err := codec.Issue(bob.ID)
	require.NoError(t, err)
	ghostToken, err := codec.Issue(99)
	require.NoError(t, err)

	t.Run("resolves the token owner", func(t *testing.T) {
		t.Parallel()
		users := &fakeUsers{users: map[int64]models.User{1: alice, 2: bob}}
		mw := JWTMiddleware(codec, users)

		rec, seen := serve(t, mw, "JWT "+aliceToken)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, alice, *seen)

		rec, seen = serve(t, mw, "Bearer "+bobToken)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, bob, *seen)
	})

	rejected := map[string]string{
		"missing header":   "",
		"missing scheme":   aliceToken,
		"unknown scheme":   "Basic " + aliceToken,
		"extra fields":     "JWT " + aliceToken + " trailing",
		"malformed token":  "JWT abc.def.ghi",
		"tampered payload": "JWT " + aliceToken[:len(aliceToken)-5] + "AAAAA",
	}
	for name, header := range rejected {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			users := &fakeUsers{users: map[int64]models.User{1: alice}}
			rec, seen := serve(t, JWTMiddleware(codec, users), header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"msg":"unauthorized"}`, rec.Body.String())
			assert.Nil(t, seen)
			assert.Zero(t, users.calls, "store must not be consulted")
		})
	}

	t.Run("user no longer exists", func(t *testing.T) {
		t.Parallel()
		users := &fakeUsers{users: map[int64]models.User{1: alice}}
		rec, seen := serve(t, JWTMiddleware(codec, users), "JWT "+ghostToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, seen)
		assert.Equal(t, 1, users.calls)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		users := &fakeUsers{err: errors.New("database is locked")}
		rec, seen := serve(t, JWTMiddleware(codec, users), "JWT "+aliceToken)
		assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
		assert.JSONEq(t, `{"msg":"database is locked"}`, rec.Body.String())
		assert.Nil(t, seen)
	})
}

func TestUserFromContext_Empty(t *testing.T) {
	t.Parallel()
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)
}
