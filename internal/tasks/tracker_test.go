package tasks

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBeginEndBalances(t *testing.T) {
	tr := NewTracker(nil)

	a := tr.Begin("poster")
	b := tr.Begin("poster")
	c := tr.Begin("listings")
	require.Equal(t, 3, tr.Count())
	require.False(t, tr.IsIdle())
	require.Equal(t, []string{"listings", "poster", "poster"}, tr.Descriptions())

	a.End()
	a.End() // second release is a no-op
	require.Equal(t, 2, tr.Count())

	b.End()
	c.End()
	require.Equal(t, 0, tr.Count())
	require.True(t, tr.IsIdle())
	require.Empty(t, tr.Descriptions())
}

func TestEndUnknownNeverGoesNegative(t *testing.T) {
	tr := NewTracker(nil)

	require.False(t, tr.End("never registered"))
	require.Equal(t, 0, tr.Count())

	tr.Begin("x")
	require.True(t, tr.End("x"))
	require.False(t, tr.End("x"))
	require.Equal(t, 0, tr.Count())
}

func TestSequenceIsMonotonic(t *testing.T) {
	tr := NewTracker(nil)
	first := tr.Begin("a")
	second := tr.Begin("a")
	require.Less(t, first.Seq(), second.Seq())
	first.End()
	second.End()
}

func fetchThatFails(tr *Tracker) (err error) {
	tok := tr.Begin("failing fetch")
	defer tok.End()
	return errors.New("network down")
}

func TestReleasedOnFailurePath(t *testing.T) {
	tr := NewTracker(nil)
	require.Error(t, fetchThatFails(tr))
	require.True(t, tr.IsIdle())
}

func TestConcurrentRegistration(t *testing.T) {
	var changes atomic.Int64
	tr := NewTracker(func(int) { changes.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			desc := "trailer"
			if i%2 == 0 {
				desc = "review"
			}
			tok := tr.Begin(desc)
			tok.End()
		}(i)
	}
	wg.Wait()

	require.Equal(t, 0, tr.Count())
	require.Equal(t, int64(128), changes.Load())
}
