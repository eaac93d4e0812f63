package workerpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubmitReturnsComputedResult(t *testing.T) {
	p := New(2)
	defer p.Close()

	f := Submit(p, func() int { return 42 })
	require.Equal(t, 42, f.Get())
}

func TestGroupWaitPreservesSubmissionOrder(t *testing.T) {
	p := New(4)
	defer p.Close()

	var grp Group[int]
	for i := 0; i < 20; i++ {
		i := i
		grp.Go(p, func() int { return i })
	}
	results := grp.Wait()
	require.Len(t, results, 20)
	for i, v := range results {
		require.Equal(t, i, v)
	}
}

func TestGroupRunsEveryJob(t *testing.T) {
	p := New(8)
	defer p.Close()

	var counter int64
	var grp Group[struct{}]
	for i := 0; i < 50; i++ {
		grp.Go(p, func() struct{} {
			atomic.AddInt64(&counter, 1)
			return struct{}{}
		})
	}
	grp.Wait()
	require.Equal(t, int64(50), atomic.LoadInt64(&counter))
}

func TestNewNormalizesNonPositiveWorkerCount(t *testing.T) {
	p := New(0)
	defer p.Close()
	require.NotNil(t, p)

	f := Submit(p, func() int { return 7 })
	require.Equal(t, 7, f.Get())
}

func TestGlobalReturnsSameInstanceAcrossCalls(t *testing.T) {
	a := Global()
	b := Global()
	require.Same(t, a, b)
}
