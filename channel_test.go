package chanx

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRejectsZeroCapacity(t *testing.T) {
	t.Parallel()

	ch, err := Create[int](0)
	assert.Nil(t, ch)
	assert.ErrorIs(t, err, ErrBadCapacity)
}

func TestNilChannelReturnsGenError(t *testing.T) {
	t.Parallel()

	var ch *Channel[int]
	st, err := ch.Send(1)
	assert.Equal(t, GenError, st)
	assert.ErrorIs(t, err, ErrNilChannel)

	var out int
	st, err = ch.Receive(&out)
	assert.Equal(t, GenError, st)
	assert.ErrorIs(t, err, ErrNilChannel)

	st, _ = ch.Close()
	assert.Equal(t, GenError, st)

	st, _ = ch.Destroy()
	assert.Equal(t, GenError, st)
}

// Scenario 1: buffered transfer.
func TestBufferedTransfer(t *testing.T) {
	t.Parallel()

	ch, err := Create[int](2)
	require.NoError(t, err)

	st, err := ch.Send(10)
	require.NoError(t, err)
	require.Equal(t, Success, st)

	st, err = ch.Send(20)
	require.NoError(t, err)
	require.Equal(t, Success, st)

	var out int
	st, err = ch.Receive(&out)
	require.NoError(t, err)
	assert.Equal(t, Success, st)
	assert.Equal(t, 10, out)

	st, err = ch.Receive(&out)
	require.NoError(t, err)
	assert.Equal(t, Success, st)
	assert.Equal(t, 20, out)
}

// Scenario 2: backpressure.
func TestBackpressure(t *testing.T) {
	t.Parallel()

	ch, err := Create[string](1)
	require.NoError(t, err)

	st, _ := ch.Send("A")
	require.Equal(t, Success, st)

	done := make(chan Status, 1)
	go func() {
		st, _ := ch.Send("B")
		done <- st
	}()

	// "B" must still be blocked: capacity 1, buffer holds "A".
	select {
	case <-done:
		t.Fatal("Send(B) completed before a slot was freed")
	case <-time.After(50 * time.Millisecond):
	}

	var out string
	st, err = ch.Receive(&out)
	require.NoError(t, err)
	require.Equal(t, Success, st)
	assert.Equal(t, "A", out)

	select {
	case st := <-done:
		assert.Equal(t, Success, st)
	case <-time.After(2 * time.Second):
		t.Fatal("Send(B) never unblocked after a slot was freed")
	}

	st, err = ch.Receive(&out)
	require.NoError(t, err)
	require.Equal(t, Success, st)
	assert.Equal(t, "B", out)
}

// Scenario 3: close unblocks senders.
func TestCloseUnblocksSenders(t *testing.T) {
	t.Parallel()

	ch, err := Create[int](1)
	require.NoError(t, err)

	st, _ := ch.Send(1) // fills the only slot
	require.Equal(t, Success, st)

	var wg sync.WaitGroup
	results := make(chan Status, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, _ := ch.Send(99)
			results <- st
		}()
	}

	// Give both senders a moment to actually park.
	time.Sleep(20 * time.Millisecond)

	st, err = ch.Close()
	require.NoError(t, err)
	require.Equal(t, Success, st)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("close did not unblock both blocked senders within bound")
	}

	close(results)
	for st := range results {
		assert.Equal(t, ClosedError, st)
	}
}

// Scenario 4: non-blocking on empty.
func TestTryReceiveOnEmpty(t *testing.T) {
	t.Parallel()

	ch, err := Create[int](4)
	require.NoError(t, err)

	out := 42
	st, err := ch.TryReceive(&out)
	assert.Equal(t, ChannelEmpty, st)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Equal(t, 42, out, "out-param must be untouched on ChannelEmpty")
}

func TestTrySendOnFull(t *testing.T) {
	t.Parallel()

	ch, err := Create[int](1)
	require.NoError(t, err)

	st, _ := ch.TrySend(1)
	require.Equal(t, Success, st)

	st, err = ch.TrySend(2)
	assert.Equal(t, ChannelFull, st)
	assert.ErrorIs(t, err, ErrFull)
}

func TestTrySendClosedBeatsFull(t *testing.T) {
	t.Parallel()

	ch, err := Create[int](1)
	require.NoError(t, err)

	st, _ := ch.TrySend(1) // fill it
	require.Equal(t, Success, st)

	_, _ = ch.Close()

	st, err = ch.TrySend(2)
	assert.Equal(t, ClosedError, st, "closed must take priority over full")
	assert.ErrorIs(t, err, ErrClosed)
}

// Idempotence law.
func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	ch, err := Create[int](1)
	require.NoError(t, err)

	st, err := ch.Close()
	require.NoError(t, err)
	require.Equal(t, Success, st)

	st, err = ch.Close()
	assert.Equal(t, ClosedError, st)
	assert.ErrorIs(t, err, ErrClosed)
}

// Every operation on a closed channel returns ClosedError.
func TestClosedChannelRejectsEverything(t *testing.T) {
	t.Parallel()

	ch, err := Create[int](4)
	require.NoError(t, err)
	_, _ = ch.Close()

	st, _ := ch.Send(1)
	assert.Equal(t, ClosedError, st)

	var out int
	st, _ = ch.Receive(&out)
	assert.Equal(t, ClosedError, st)

	st, _ = ch.TrySend(1)
	assert.Equal(t, ClosedError, st)

	st, _ = ch.TryReceive(&out)
	assert.Equal(t, ClosedError, st)
}

// Drain-then-close: buffered items already present before Close remain
// receivable (see DESIGN.md for the policy choice).
func TestReceiveDrainsBufferedItemsAfterClose(t *testing.T) {
	t.Parallel()

	ch, err := Create[int](2)
	require.NoError(t, err)

	_, _ = ch.Send(1)
	_, _ = ch.Send(2)
	_, _ = ch.Close()

	var out int
	st, err := ch.Receive(&out)
	require.NoError(t, err)
	require.Equal(t, Success, st)
	assert.Equal(t, 1, out)

	st, err = ch.Receive(&out)
	require.NoError(t, err)
	require.Equal(t, Success, st)
	assert.Equal(t, 2, out)

	// Buffer now drained: further receives observe closure.
	st, err = ch.Receive(&out)
	assert.Equal(t, ClosedError, st)
	assert.ErrorIs(t, err, ErrClosed)
}

// Destroy precondition.
func TestDestroyRequiresClosed(t *testing.T) {
	t.Parallel()

	ch, err := Create[int](1)
	require.NoError(t, err)

	st, err := ch.Destroy()
	assert.Equal(t, DestroyError, st)
	assert.ErrorIs(t, err, ErrNotClosed)

	_, _ = ch.Close()
	st, err = ch.Destroy()
	assert.NoError(t, err)
	assert.Equal(t, Success, st)
}

func TestDestroyRefusesWithLiveSubscribers(t *testing.T) {
	t.Parallel()

	ch, err := Create[int](1)
	require.NoError(t, err)
	_, _ = ch.Close()

	tok := newSelectToken()
	h := ch.registerWaiter(tok)
	defer ch.unregisterWaiter(h)

	st, err := ch.Destroy()
	assert.Equal(t, DestroyError, st)
	assert.Error(t, err)
}

// Round-trip law: single producer, single consumer, FIFO order.
func TestRoundTripSingleProducerSingleConsumer(t *testing.T) {
	t.Parallel()

	ch, err := Create[int](4)
	require.NoError(t, err)

	const n = 500
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			st, _ := ch.Send(i)
			require.Equal(t, Success, st)
		}
	}()

	got := make([]int, 0, n)
	for i := 0; i < n; i++ {
		var out int
		st, err := ch.Receive(&out)
		require.NoError(t, err)
		require.Equal(t, Success, st)
		got = append(got, out)
	}
	wg.Wait()

	want := make([]int, n)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

// Invariant: 0 <= item_count <= capacity, slot_count+item_count == capacity.
func TestInvariantsHoldUnderConcurrency(t *testing.T) {
	const capacity = 8
	ch, err := Create[int](capacity)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				ch.Send(i)
			}
		}()
	}
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out int
			for i := 0; i < 200; i++ {
				ch.Receive(&out)
			}
		}()
	}
	wg.Wait()

	s := ch.Stats()
	assert.GreaterOrEqual(t, s.ItemCount, 0)
	assert.LessOrEqual(t, s.ItemCount, capacity)
	assert.Equal(t, capacity, s.ItemCount+s.SlotCount)
}
