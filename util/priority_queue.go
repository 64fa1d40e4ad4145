package util

import (
	"golang.org/x/exp/constraints"
)

type _PQItem[T any, P constraints.Ordered] struct {
	value    T
	priority P
}

// Binary min-heap keyed by priority.
type PriorityQueue[T any, P constraints.Ordered] struct {
	items []_PQItem[T, P]
}

func NewPriorityQueue[T any, P constraints.Ordered](capacity int) PriorityQueue[T, P] {
	return PriorityQueue[T, P]{
		items: make([]_PQItem[T, P], 0, capacity),
	}
}

func (self *PriorityQueue[T, P]) Enqueue(value T, priority P) {
	self.items = append(self.items, _PQItem[T, P]{value, priority})
	i := len(self.items) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if self.items[parent].priority <= self.items[i].priority {
			break
		}
		self.items[parent], self.items[i] = self.items[i], self.items[parent]
		i = parent
	}
}

// Removes and returns the item with the lowest priority.
//
// Returns false if the queue is empty.
func (self *PriorityQueue[T, P]) Dequeue() (T, bool) {
	if len(self.items) == 0 {
		var t T
		return t, false
	}
	top := self.items[0]
	last := len(self.items) - 1
	self.items[0] = self.items[last]
	self.items = self.items[:last]
	i := 0
	for {
		left := 2*i + 1
		if left >= len(self.items) {
			break
		}
		smallest := left
		right := left + 1
		if right < len(self.items) && self.items[right].priority < self.items[left].priority {
			smallest = right
		}
		if self.items[i].priority <= self.items[smallest].priority {
			break
		}
		self.items[i], self.items[smallest] = self.items[smallest], self.items[i]
		i = smallest
	}
	return top.value, true
}

func (self *PriorityQueue[T, P]) Length() int {
	return len(self.items)
}

func (self *PriorityQueue[T, P]) Clear() {
	self.items = self.items[:0]
}
