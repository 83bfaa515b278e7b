package services

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/fuego-api/internal/auth"
	"github.com/isdelr/fuego-api/internal/store"
)

func TestUserService_Register(t *testing.T) {
	t.Parallel()
	svc := newUserService(newTestStore(t))

	user, err := svc.Register(t.Context(), RegisterInput{First: "T1", Last: "T2", Email: "t@e.net", Password: "123456"})
	require.NoError(t, err)
	assert.Positive(t, user.ID)
	assert.Equal(t, "T1", user.First)
	assert.Equal(t, "T2", user.Last)
	assert.NotEmpty(t, user.Password)
	assert.NotEqual(t, "123456", user.Password)
	assert.True(t, svc.hasher.Verify("123456", user.Password))
	assert.False(t, svc.hasher.Verify("654321", user.Password))

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(t.Context(), RegisterInput{First: "A", Last: "B", Email: "t@e.net", Password: "x"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "already in use", verr.Fields["email"])
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Register(t.Context(), RegisterInput{Email: "new@e.net"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, map[string]string{
			"first":    "must be provided",
			"last":     "must be provided",
			"password": "must be provided",
		}, verr.Fields)
		assert.JSONEq(t, `{"first":"must be provided","last":"must be provided","password":"must be provided"}`, err.Error())
	})
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()
	svc := newUserService(newTestStore(t))
	user := register(t, svc, "John", "john@mail.net")

	token, err := svc.Authenticate(t.Context(), "john@mail.net", "123456")
	require.NoError(t, err)

	claims, err := auth.NewTokenCodec("FUEGO_TEST", 0).Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	for name, creds := range map[string][2]string{
		"wrong password": {"john@mail.net", "654321"},
		"unknown email":  {"jane@mail.net", "123456"},
		"empty email":    {"", "123456"},
		"empty password": {"john@mail.net", ""},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Authenticate(t.Context(), creds[0], creds[1])
			require.ErrorIs(t, err, ErrUnauthenticated)
		})
	}
}

func TestUserService_SelfAndFind(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	svc := newUserService(s)
	john := register(t, svc, "John", "john@mail.net")
	jane := register(t, svc, "Jane", "jane@mail.net")

	profile, err := svc.GetSelf(t.Context(), john)
	require.NoError(t, err)
	assert.Equal(t, john.Profile(), profile)

	profiles, err := svc.FindProfiles(t.Context(), "jane@mail.net")
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, jane.ID, profiles[0].ID)

	profiles, err = svc.FindProfiles(t.Context(), "nobody@mail.net")
	require.NoError(t, err)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)

	profiles, err = svc.Find(t.Context(), strconv.FormatInt(john.ID, 10))
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "john@mail.net", profiles[0].Email)

	profiles, err = svc.Find(t.Context(), "Jane")
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, jane.ID, profiles[0].ID)

	// both share the last name
	profiles, err = svc.Find(t.Context(), "Test")
	require.NoError(t, err)
	assert.Len(t, profiles, 2)

	profiles, err = svc.Find(t.Context(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, profiles)

	require.NoError(t, svc.DeleteSelf(t.Context(), john))
	_, err = svc.GetSelf(t.Context(), john)
	var perr *PreconditionError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
