package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventplanner/internal/models"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSession_CurrentUserID_FromRecord(t *testing.T) {
	t.Parallel()
	token := signedToken(t, jwt.MapClaims{"id": "claim-id", "exp": time.Now().Add(time.Hour).Unix()})

	s := New(token, &models.User{ID: "u1"})
	assert.Equal(t, "u1", s.CurrentUserID())
	assert.True(t, s.Valid())
}

func TestSession_CurrentUserID_FromClaim(t *testing.T) {
	t.Parallel()
	token := signedToken(t, jwt.MapClaims{"id": "claim-id", "exp": time.Now().Add(time.Hour).Unix()})

	assert.Equal(t, "claim-id", New(token, nil).CurrentUserID())
}

func TestSession_CurrentUserID_Expired(t *testing.T) {
	t.Parallel()
	token := signedToken(t, jwt.MapClaims{"id": "u1", "exp": time.Now().Add(-time.Minute).Unix()})

	s := New(token, &models.User{ID: "u1"})
	assert.Empty(t, s.CurrentUserID())
	assert.False(t, s.Valid())
}

func TestSession_CurrentUserID_NoSession(t *testing.T) {
	t.Parallel()

	var s *Session
	assert.Empty(t, s.CurrentUserID())
	assert.Empty(t, Anonymous.CurrentUserID())
	assert.Empty(t, New("garbage", &models.User{ID: "u1"}).CurrentUserID())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "session.json")
	token := signedToken(t, jwt.MapClaims{"id": "u1"})

	require.NoError(t, Save(path, New(token, &models.User{ID: "u1", Username: "jan"})))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "u1", loaded.CurrentUserID())
	assert.Equal(t, "jan", loaded.User.Username)

	require.NoError(t, Clear(path))
	empty, err := Load(path)
	require.NoError(t, err)
	assert.False(t, empty.Valid())
}
