package batch

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_KeepsSuccessesAndIsolatesFailures(t *testing.T) {
	errOdd := errors.New("odd")
	res := Map(context.Background(), []int{1, 2, 3, 4, 5, 6}, 0, func(_ context.Context, n int) (int, error) {
		if n%2 == 1 {
			return 0, errOdd
		}
		return n * 10, nil
	})

	sort.Ints(res.Succeeded)
	assert.Equal(t, []int{20, 40, 60}, res.Succeeded)
	require.Len(t, res.Failed, 3)
	for _, f := range res.Failed {
		assert.ErrorIs(t, f.Err, errOdd)
		assert.Equal(t, 1, f.Item%2)
	}
}

func TestMap_RespectsLimit(t *testing.T) {
	var inFlight, peak int32
	items := make([]int, 20)
	Map(context.Background(), items, 3, func(_ context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}, nil
	})
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestMap_Empty(t *testing.T) {
	res := Map(context.Background(), nil, 4, func(_ context.Context, s string) (string, error) { return s, nil })
	assert.Empty(t, res.Succeeded)
	assert.Empty(t, res.Failed)
}
