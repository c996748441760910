package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingIsNotAnError(t *testing.T) {
	t.Parallel()

	s, err := NewStore(filepath.Join(t.TempDir(), "checkpoint.json"))
	require.NoError(t, err)

	_, ok, err := s.Load()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewStore(filepath.Join(t.TempDir(), "checkpoint.json"))
	require.NoError(t, err)

	in := Checkpoint{
		RunID:   "run-1",
		LastIMO: 9100499,
		Counters: Counters{
			Checked: 500, Valid: 50, Found: 12, Extracted: 11,
			NotFound: 30, SoftNotFound: 8, Errors: 1,
		},
	}
	require.NoError(t, s.Save(in))

	out, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in.RunID, out.RunID)
	require.Equal(t, in.LastIMO, out.LastIMO)
	require.Equal(t, in.Counters, out.Counters)
	require.False(t, out.UpdatedAt.IsZero())
}

func TestSaveNeverMovesBackwards(t *testing.T) {
	t.Parallel()

	s, err := NewStore(filepath.Join(t.TempDir(), "checkpoint.json"))
	require.NoError(t, err)

	require.NoError(t, s.Save(Checkpoint{RunID: "run-1", LastIMO: 9100999}))
	require.NoError(t, s.Save(Checkpoint{RunID: "run-1", LastIMO: 9100499}))

	out, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 9100999, out.LastIMO)
}

func TestNewStoreCreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "deep", "checkpoint.json")
	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(Checkpoint{LastIMO: 1000007}))
}
