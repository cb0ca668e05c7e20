package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("secret")

	token, err := SignAccess(42, "user", secret, time.Minute)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "user", claims.Role)

	id, err := SubjectID(claims.Subject)
	require.NoError(t, err)
	require.EqualValues(t, 42, id)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := SignAccess(42, "user", []byte("secret"), time.Minute)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(token, []byte("other"))
	require.Error(t, err)
}

func TestRefreshTokenExpired(t *testing.T) {
	secret := []byte("secret")

	token, err := SignRefresh(42, "owner", secret, -time.Minute)
	require.NoError(t, err)

	_, err = RefreshClaimsFromToken(token, secret)
	require.Error(t, err)
}

// Refresh tokens carry a unique id, so two logins never produce the same
// token even within the same second.
func TestRefreshTokenUnique(t *testing.T) {
	secret := []byte("secret")

	first, err := SignRefresh(42, "user", secret, time.Minute)
	require.NoError(t, err)
	second, err := SignRefresh(42, "user", secret, time.Minute)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestAccessAndRefreshNotInterchangeable(t *testing.T) {
	access := []byte("access-secret")
	refresh := []byte("refresh-secret")

	token, err := SignAccess(42, "user", access, time.Minute)
	require.NoError(t, err)

	_, err = RefreshClaimsFromToken(token, refresh)
	require.Error(t, err)
}

func TestSubjectIDRejectsGarbage(t *testing.T) {
	_, err := SubjectID("not-a-number")
	require.Error(t, err)
}
