package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordMovesToBack(t *testing.T) {
	h := New(0)
	for _, id := range []int{1, 2, 1, 3} {
		h.Record(id)
	}
	assert.Equal(t, []int{2, 1, 3}, h.Snapshot())
	assert.Equal(t, []int{3, 1, 2}, h.Recent())
}

func TestRecordSameIDTwice(t *testing.T) {
	h := New(0)
	h.Record(7)
	h.Record(7)
	assert.Equal(t, []int{7}, h.Snapshot())
}

func TestRemove(t *testing.T) {
	h := New(0)
	h.Record(1)
	h.Record(2)
	h.Record(3)

	h.Remove(2)
	h.Remove(42)
	assert.Equal(t, []int{1, 3}, h.Snapshot())
	assert.Equal(t, []int{3, 1}, h.Recent())
}

func TestCapacityEvictsOldest(t *testing.T) {
	h := New(3)
	for _, id := range []int{1, 2, 3, 1, 4} {
		h.Record(id)
	}
	assert.Equal(t, []int{3, 1, 4}, h.Snapshot())
}

func TestClear(t *testing.T) {
	h := New(0)
	h.Record(1)
	h.Record(2)
	h.Clear()
	assert.Empty(t, h.Snapshot())
	assert.Empty(t, h.Recent())

	h.Record(5)
	assert.Equal(t, []int{5}, h.Snapshot())
}

func TestLargeHistoryStaysDeduplicated(t *testing.T) {
	h := New(0)
	for i := 0; i < 10000; i++ {
		h.Record(i % 100)
	}
	snap := h.Snapshot()
	assert.Len(t, snap, 100)
	assert.Equal(t, 99, snap[len(snap)-1])
}
