package ringbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRemoveFIFO(t *testing.T) {
	t.Parallel()

	b := New[int](3)
	require.Equal(t, 3, b.Cap())
	require.Equal(t, 0, b.Len())

	b.Add(10)
	b.Add(20)
	b.Add(30)
	assert.Equal(t, 3, b.Len())

	assert.Equal(t, 10, b.Remove())
	assert.Equal(t, 20, b.Remove())
	assert.Equal(t, 30, b.Remove())
	assert.Equal(t, 0, b.Len())
}

func TestWrapAround(t *testing.T) {
	t.Parallel()

	b := New[string](2)
	b.Add("a")
	b.Add("b")
	assert.Equal(t, "a", b.Remove())
	b.Add("c") // wraps into the slot freed by "a"
	assert.Equal(t, "b", b.Remove())
	assert.Equal(t, "c", b.Remove())
	assert.Equal(t, 0, b.Len())
}

func TestInterleavedAddRemove(t *testing.T) {
	t.Parallel()

	b := New[int](4)
	want := make([]int, 0, 100)
	got := make([]int, 0, 100)

	for i := 0; i < 100; i++ {
		b.Add(i)
		want = append(want, i)
		if b.Len() == b.Cap() || i%3 == 0 {
			got = append(got, b.Remove())
		}
	}
	for b.Len() > 0 {
		got = append(got, b.Remove())
	}

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i], got[i], "FIFO order violated at index %d", i)
	}
}
