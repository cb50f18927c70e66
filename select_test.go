package chanx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectRequiresAtLeastOneCase(t *testing.T) {
	t.Parallel()

	idx, st, err := Select()
	assert.Equal(t, -1, idx)
	assert.Equal(t, GenError, st)
	assert.ErrorIs(t, err, ErrNoCases)
}

// Scenario 5: select picks first ready.
func TestSelectPicksFirstReady(t *testing.T) {
	t.Parallel()

	a, err := Create[int](1)
	require.NoError(t, err)
	b, err := Create[int](1)
	require.NoError(t, err)

	_, _ = b.Send(7)

	var va, vb int
	idx, st, err := Select(Recv(a, &va), Recv(b, &vb))
	require.NoError(t, err)
	assert.Equal(t, Success, st)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 7, vb)
}

// Scenario 6: select blocks then wakes on a later send.
func TestSelectBlocksThenWakes(t *testing.T) {
	t.Parallel()

	a, err := Create[int](1)
	require.NoError(t, err)
	b, err := Create[int](1)
	require.NoError(t, err)

	type result struct {
		idx int
		st  Status
		v   int
	}
	resCh := make(chan result, 1)

	go func() {
		var va, vb int
		idx, st, _ := Select(Recv(a, &va), Recv(b, &vb))
		v := va
		if idx == 1 {
			v = vb
		}
		resCh <- result{idx, st, v}
	}()

	time.Sleep(20 * time.Millisecond) // let the select register and park
	st, _ := b.Send(42)
	require.Equal(t, Success, st)

	select {
	case r := <-resCh:
		assert.Equal(t, Success, r.st)
		assert.Equal(t, 1, r.idx)
		assert.Equal(t, 42, r.v)
	case <-time.After(2 * time.Second):
		t.Fatal("select never woke up after a candidate became ready")
	}
}

// Scenario 7: select propagates close.
func TestSelectPropagatesClose(t *testing.T) {
	t.Parallel()

	a, err := Create[int](1)
	require.NoError(t, err)
	b, err := Create[int](1)
	require.NoError(t, err)
	_, _ = b.Close()

	var va, vb int
	idx, st, err := Select(Recv(a, &va), Recv(b, &vb))
	assert.Equal(t, ClosedError, st)
	assert.Equal(t, 1, idx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSelectSendCase(t *testing.T) {
	t.Parallel()

	full, err := Create[int](1)
	require.NoError(t, err)
	_, _ = full.Send(1) // make it full so this case can't win

	open, err := Create[int](1)
	require.NoError(t, err)

	idx, st, err := Select(Send(full, 99), Send(open, 5))
	require.NoError(t, err)
	assert.Equal(t, Success, st)
	assert.Equal(t, 1, idx)

	var out int
	_, _ = open.Receive(&out)
	assert.Equal(t, 5, out)
}

func TestSelectReturnsIndexWithinBounds(t *testing.T) {
	t.Parallel()

	chans := make([]*Channel[int], 3)
	cases := make([]Case, 3)
	outs := make([]int, 3)
	for i := range chans {
		ch, err := Create[int](1)
		require.NoError(t, err)
		chans[i] = ch
		cases[i] = Recv(ch, &outs[i])
	}
	_, _ = chans[2].Send(1)

	idx, st, err := Select(cases...)
	require.NoError(t, err)
	assert.Equal(t, Success, st)
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, len(cases))
}

// Repeated readiness: while busy keeps flipping between ready and not
// ready (every state change re-posts the token and each scan restarts
// at index 0), a Select over busy and an already-ready target still
// completes with Success. Which candidate wins is not checked.
func TestSelectFairnessUnderRepeatedReadiness(t *testing.T) {
	t.Parallel()

	busy, err := Create[int](1)
	require.NoError(t, err)
	target, err := Create[int](1)
	require.NoError(t, err)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			st, _ := busy.TrySend(1)
			if st == Success {
				var out int
				busy.Receive(&out)
			}
		}
	}()

	_, _ = target.Send(123)

	var vb, vt int
	idx, st, err := Select(Recv(busy, &vb), Recv(target, &vt))
	require.NoError(t, err)
	assert.Equal(t, Success, st)
	_ = idx // either candidate may legitimately win this particular race
	_ = vb
	_ = vt
}
