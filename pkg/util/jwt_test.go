package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSettings = TokenSettings{
	Secret:   "test-secret-key-for-jwt-testing",
	Issuer:   "bookshelf-test",
	Audience: "bookshelf-clients",
	Expiry:   time.Hour,
}

func TestGenerateToken(t *testing.T) {
	before := time.Now()
	token, expiresAt, err := GenerateToken(42, "reader", "user", testSettings)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, before.Add(time.Hour), expiresAt, 2*time.Second)

	claims, err := ValidateToken(token, testSettings)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "42", claims.NameID)
	assert.Equal(t, "reader", claims.Name)
	assert.Equal(t, "user", claims.Role)
	assert.NotEmpty(t, claims.ID)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	a, _, err := GenerateToken(1, "a", "user", testSettings)
	require.NoError(t, err)
	b, _, err := GenerateToken(1, "a", "user", testSettings)
	require.NoError(t, err)

	ca, err := ValidateToken(a, testSettings)
	require.NoError(t, err)
	cb, err := ValidateToken(b, testSettings)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestValidateToken(t *testing.T) {
	valid, _, err := GenerateToken(7, "admin", "admin", testSettings)
	require.NoError(t, err)

	expiredSettings := testSettings
	expiredSettings.Expiry = -time.Minute
	expired, _, err := GenerateToken(7, "admin", "admin", expiredSettings)
	require.NoError(t, err)

	wrongSecret := testSettings
	wrongSecret.Secret = "other"
	wrongIssuer := testSettings
	wrongIssuer.Issuer = "someone-else"
	wrongAudience := testSettings
	wrongAudience.Audience = "mobile"

	tests := []struct {
		name     string
		token    string
		settings TokenSettings
		wantErr  error
	}{
		{name: "Valid token", token: valid, settings: testSettings},
		{name: "Expired token", token: expired, settings: testSettings, wantErr: ErrExpiredToken},
		{name: "Wrong secret", token: valid, settings: wrongSecret, wantErr: ErrInvalidToken},
		{name: "Wrong issuer", token: valid, settings: wrongIssuer, wantErr: ErrInvalidToken},
		{name: "Wrong audience", token: valid, settings: wrongAudience, wantErr: ErrInvalidToken},
		{name: "Garbage", token: "invalid.token.format", settings: testSettings, wantErr: ErrInvalidToken},
		{name: "Empty", token: "", settings: testSettings, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "admin", claims.Role)
		})
	}
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    testSettings.Issuer,
			Audience:  jwt.ClaimStrings{testSettings.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(testSettings.Secret))
	require.NoError(t, err)

	_, err = ValidateToken(signed, testSettings)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_NonNumericSubject(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "abc",
			Issuer:    testSettings.Issuer,
			Audience:  jwt.ClaimStrings{testSettings.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSettings.Secret))
	require.NoError(t, err)

	_, err = ValidateToken(signed, testSettings)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
