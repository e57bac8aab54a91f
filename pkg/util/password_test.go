package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "Valid password", password: "password123"},
		{name: "Special characters", password: "p@ss!#$%^&*()"},
		{name: "Exactly at bcrypt limit", password: strings.Repeat("a", MaxPasswordBytes)},
		{name: "Empty password", password: "", wantErr: ErrEmptyPassword},
		{name: "Longer than bcrypt limit", password: strings.Repeat("a", 80), wantErr: ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, hash)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.True(t, strings.HasPrefix(hash, "$2a$12$"))
		})
	}
}

func TestHashPassword_SaltsEachHash(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("mySecurePassword123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{name: "Correct password", hash: hash, password: "mySecurePassword123", want: true},
		{name: "Wrong password", hash: hash, password: "wrong", want: false},
		{name: "Case sensitive", hash: hash, password: "MYSECUREPASSWORD123", want: false},
		{name: "Empty hash", hash: "", password: "anything", want: false},
		{name: "Malformed hash", hash: "not-a-bcrypt-hash", password: "anything", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.hash, tt.password))
		})
	}
}
