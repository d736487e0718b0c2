package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminToken(t *testing.T) {
	token := AdminToken("changeme123", "flashdelivery")

	assert.Len(t, token, 35)
	assert.Equal(t, "fd_", token[:3])
	assert.Equal(t, token, AdminToken("changeme123", "flashdelivery"))
	assert.NotEqual(t, token, AdminToken("other", "flashdelivery"))
}

func TestStaticTokenAuth(t *testing.T) {
	auth := NewStaticTokenAuth("changeme123", "flashdelivery")

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "correct password", password: "changeme123"},
		{name: "wrong password", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "empty password", password: "", wantErr: ErrInvalidCredentials},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			token, err := auth.Login(testCase.password)
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				assert.Empty(t, token)
				return
			}
			require.NoError(t, err)
			assert.True(t, auth.Authorize(token))
		})
	}

	assert.False(t, auth.Authorize(""))
	assert.False(t, auth.Authorize("fd_wrong"))
}

func TestTrackingQRGenerator(t *testing.T) {
	gen := TrackingQRGenerator{BaseURL: "https://flash.example/"}

	assert.Equal(t, "https://flash.example/#/track/abc123", gen.Link("abc123"))

	png, err := gen.Generate("abc123")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}
