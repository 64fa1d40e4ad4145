package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityQueueOrder(t *testing.T) {
	heap := NewPriorityQueue[string, float64](4)
	heap.Enqueue("c", 3.5)
	heap.Enqueue("a", 0.5)
	heap.Enqueue("d", 7)
	heap.Enqueue("b", 1)
	heap.Enqueue("b2", 1)

	order := NewList[string](5)
	for {
		item, ok := heap.Dequeue()
		if !ok {
			break
		}
		order.Add(item)
	}
	assert.Equal(t, "a", order[0])
	assert.ElementsMatch(t, []string{"b", "b2"}, order[1:3])
	assert.Equal(t, []string{"c", "d"}, []string(order[3:]))
	assert.Equal(t, 0, heap.Length())
}

func TestFlagsReset(t *testing.T) {
	flags := NewFlags[float64](4, -1)
	*flags.Get(2) = 10
	*flags.Get(3) = 20
	assert.Equal(t, float64(10), *flags.Get(2))
	assert.Equal(t, float64(-1), *flags.Get(0))

	flags.Reset()
	for i := int32(0); i < 4; i++ {
		assert.Equal(t, float64(-1), *flags.Get(i))
	}
}

func TestOptional(t *testing.T) {
	some := Some(3)
	none := None[int]()
	assert.True(t, some.HasValue())
	assert.Equal(t, 3, some.Value)
	assert.False(t, none.HasValue())
}

func TestSortedKeysAndMean(t *testing.T) {
	dict := Dict[int32, string]{300: "b", 120: "a", 1200: "c"}
	assert.Equal(t, List[int32]{120, 300, 1200}, SortedKeys(dict))

	mean, ok := Mean([]float64{40, 56, 80})
	assert.True(t, ok)
	assert.InDelta(t, 58.666, mean, 1e-3)
	_, ok = Mean([]float64{})
	assert.False(t, ok)
}
