package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeys(t *testing.T) (*Keys, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewKeys(key), key
}

func TestGenerateAndParseToken(t *testing.T) {
	t.Parallel()

	keys, _ := newTestKeys(t)
	token, err := keys.GenerateToken(42, "admin", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := keys.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	keys, _ := newTestKeys(t)
	token, err := keys.GenerateToken(1, "user", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = keys.ParseToken(token)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)
}

func TestParseToken_WrongKey(t *testing.T) {
	t.Parallel()

	signer, _ := newTestKeys(t)
	verifier, _ := newTestKeys(t)
	token, err := signer.GenerateToken(1, "user", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_RejectsHMAC(t *testing.T) {
	t.Parallel()

	keys, _ := newTestKeys(t)
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"userID": 1,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = keys.ParseToken(signed)
	assert.Error(t, err)
}

func TestLoadKeys(t *testing.T) {
	t.Parallel()

	_, key := newTestKeys(t)
	dir := t.TempDir()

	privatePath := filepath.Join(dir, "private_key.pem")
	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privatePath, privatePEM, 0o600))

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPath := filepath.Join(dir, "public_key.pem")
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})
	require.NoError(t, os.WriteFile(publicPath, publicPEM, 0o600))

	keys, err := LoadKeys(privatePath, publicPath)
	require.NoError(t, err)

	token, err := keys.GenerateToken(7, "user", time.Now().Add(time.Hour))
	require.NoError(t, err)
	claims, err := keys.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)

	_, err = LoadKeys(filepath.Join(dir, "missing.pem"), publicPath)
	assert.ErrorContains(t, err, "read private key")
}
