package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vertti/ttysplit/pkg/child"
)

// DefaultTimeout bounds how long a test waits for a child to finish.
const DefaultTimeout = 10 * time.Second

// Collect drains s and fails the test on any error, including a timeout.
func Collect(t *testing.T, s *child.Streamer) []child.Output {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	var got []child.Output
	for out, err := range s.All(ctx) {
		require.NoError(t, err)
		got = append(got, out)
	}
	return got
}

// LinesFrom returns the lines that came from origin, in order.
func LinesFrom(outs []child.Output, origin child.Origin) []string {
	var lines []string
	for _, o := range outs {
		if o.Origin == origin {
			lines = append(lines, o.Line)
		}
	}
	return lines
}
