package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	want := Profile{ActiveAgents: []string{"physics"}, PreferredStyle: "concise"}
	require.NoError(t, s.Put(ctx, "u1", want))

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestProfileAllows(t *testing.T) {
	var nilProfile *Profile
	require.True(t, nilProfile.Allows("physics"))

	empty := &Profile{}
	require.True(t, empty.Allows("physics"))

	scoped := &Profile{ActiveAgents: []string{"physics", "mathematics"}}
	require.True(t, scoped.Allows("physics"))
	require.False(t, scoped.Allows("design"))
}
