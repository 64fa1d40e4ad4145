package algorithm

import (
	"sort"
)

//*******************************************
// reach
//*******************************************

// Nodes settled by a bounded search, ordered by non-decreasing cost.
//
// A reach computed at the largest budget answers every smaller budget by slicing.
type Reach struct {
	Source int32
	Budget float64
	nodes  []int32
	costs  []float64
	index  map[int32]int
}

func _NewReach(source int32, budget float64) *Reach {
	return &Reach{
		Source: source,
		Budget: budget,
		nodes:  make([]int32, 0, 64),
		costs:  make([]float64, 0, 64),
		index:  make(map[int32]int, 64),
	}
}

func (self *Reach) add(node int32, cost float64) {
	self.index[node] = len(self.nodes)
	self.nodes = append(self.nodes, node)
	self.costs = append(self.costs, cost)
}

// Returns the nodes with cost <= t.
//
// The result is a view on the reach and must not be modified.
func (self *Reach) Within(t float64) []int32 {
	n := sort.Search(len(self.costs), func(i int) bool {
		return self.costs[i] > t
	})
	return self.nodes[:n]
}

func (self *Reach) Cost(node int32) (float64, bool) {
	i, ok := self.index[node]
	if !ok {
		return 0, false
	}
	return self.costs[i], true
}

func (self *Reach) Length() int {
	return len(self.nodes)
}

func (self *Reach) Nodes() []int32 {
	return self.nodes
}
