package infra

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareSigner_RoundTrip(t *testing.T) {
	s := NewShareSigner("test-secret", time.Hour)
	id := uuid.New()

	token, exp, err := s.Sign(id, "C-001")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestShareSigner_Expired(t *testing.T) {
	s := NewShareSigner("test-secret", time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	s.now = func() time.Time { return issued }
	token, _, err := s.Sign(uuid.New(), "C-001")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Parse(token)
	assert.ErrorIs(t, err, ErrShareExpired)
}

func TestShareSigner_WrongSecret(t *testing.T) {
	token, _, err := NewShareSigner("a", time.Hour).Sign(uuid.New(), "C-001")
	require.NoError(t, err)

	_, err = NewShareSigner("b", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidShare)

	_, err = NewShareSigner("a", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidShare)
}

func TestShareSigner_Disabled(t *testing.T) {
	s := NewShareSigner("", time.Hour)
	assert.False(t, s.Enabled())

	_, _, err := s.Sign(uuid.New(), "C-001")
	assert.ErrorIs(t, err, ErrSharingDisabled)
	_, err = s.Parse("x")
	assert.ErrorIs(t, err, ErrSharingDisabled)
}
