package idx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/contacts/pkg/idx"
)

func TestParse(t *testing.T) {
	id := idx.New()
	got, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, got)

	for _, in := range []string{
		"",
		"not-a-ulid",
		"01HQ7T3Z1MZ0JQ3M6MZQ1FQ3Z",             // short
		strings.ToLower(id.String()),            // not canonical
		" " + id.String(),                       // padded
		"01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV' OR '1'='1", // injected
	} {
		_, err := idx.Parse(in)
		require.ErrorIs(t, err, idx.ErrInvalid, "input %q", in)
		require.False(t, idx.Valid(in))
	}
}

func TestCreationOrder(t *testing.T) {
	early := idx.NewAt(time.Unix(1, 0))
	late := idx.NewAt(time.Unix(2, 0))
	require.True(t, early.Before(late))
	require.False(t, late.Before(early))

	at := time.Date(2025, 12, 28, 9, 0, 0, 0, time.UTC)
	prev := idx.NewAt(at)
	for range 100 {
		next := idx.NewAt(at)
		require.True(t, prev.Before(next))
		prev = next
	}
}

func TestTime(t *testing.T) {
	at := time.Date(2025, 12, 28, 9, 0, 0, 0, time.UTC)
	require.True(t, idx.NewAt(at).Time().Equal(at))
	require.True(t, idx.ID("garbage").Time().IsZero())
}
