package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secreto-de-pruebas"

func TestGenerateParse_RoundTrip(t *testing.T) {
	id := Identity{AuthID: "auth-1", UserID: 7, CompanyID: 3, Role: "admin"}

	token, err := Generate(testSecret, id, "kardex-test", 5)
	require.NoError(t, err)

	claims, err := Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, int64(3), claims.CompanyID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "auth-1", claims.Subject)
	assert.NotEmpty(t, claims.ID, "cada token lleva un jti")
	assert.InDelta(t, (5 * time.Minute).Seconds(), claims.Remaining(time.Now()).Seconds(), 5)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := Generate(testSecret, Identity{UserID: 1, CompanyID: 1, Role: "empleado"}, "x", 5)
	require.NoError(t, err)

	_, err = Parse("otro-secreto", token)
	assert.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	token, err := Generate(testSecret, Identity{UserID: 1, CompanyID: 1, Role: "empleado"}, "x", -1)
	require.NoError(t, err)

	_, err = Parse(testSecret, token)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := Generate("", Identity{}, "x", 5)
	assert.Error(t, err)
}

func TestGenerate_JTIDistintoPorToken(t *testing.T) {
	id := Identity{UserID: 1, CompanyID: 1, Role: "empleado"}
	a, err := Generate(testSecret, id, "x", 5)
	require.NoError(t, err)
	b, err := Generate(testSecret, id, "x", 5)
	require.NoError(t, err)

	ca, err := Parse(testSecret, a)
	require.NoError(t, err)
	cb, err := Parse(testSecret, b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}
