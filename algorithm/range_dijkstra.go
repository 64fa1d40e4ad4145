package algorithm

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/graph"
	. "github.com/ttpr0/go-coverage/util"
)

var ErrInvalidSource = eris.New("algorithm: source is not a graph node")

type DistFlag struct {
	Dist    float64
	Settled bool
}

type PQItem struct {
	item int32
	dist float64
}

// Computes the nodes reachable from source within budget seconds.
func CalcReach(ctx context.Context, g graph.IGraph, source int32, budget float64) (*Reach, error) {
	solver := NewRangeDijkstra(g).CreateSolver()
	return solver.CalcReach(ctx, source, budget)
}

//*******************************************
// range dijkstra
//*******************************************

func NewRangeDijkstra(g graph.IGraph) *RangeDijkstra {
	return &RangeDijkstra{g: g}
}

type RangeDijkstra struct {
	g graph.IGraph
}

// Creates a solver with its own search state, solvers must not be shared between goroutines.
func (self *RangeDijkstra) CreateSolver() *RangeDijkstraSolver {
	node_flags := NewFlags[DistFlag](int32(self.g.NodeCount()), DistFlag{Dist: math.Inf(1)})
	return &RangeDijkstraSolver{
		g:          self.g,
		node_flags: node_flags,
		heap:       NewPriorityQueue[PQItem, float64](100),
	}
}

type RangeDijkstraSolver struct {
	g          graph.IGraph
	node_flags Flags[DistFlag]
	heap       PriorityQueue[PQItem, float64]
}

// Runs a bounded dijkstra from source, nodes with cost above budget are not settled.
func (self *RangeDijkstraSolver) CalcReach(ctx context.Context, source int32, budget float64) (*Reach, error) {
	if !self.g.IsNode(source) {
		return nil, eris.Wrapf(ErrInvalidSource, "node %d", source)
	}
	if budget < 0 || math.IsNaN(budget) {
		return nil, eris.Errorf("algorithm: invalid budget %v", budget)
	}
	self.node_flags.Reset()
	self.heap.Clear()

	reach := _NewReach(source, budget)
	err := _CalcRangeDijkstra(ctx, self.g, source, &self.node_flags, &self.heap, budget, func(node int32, dist float64) {
		reach.add(node, dist)
	})
	if err != nil {
		return nil, err
	}
	return reach, nil
}

const _CTX_CHECK_INTERVAL = 1024

func _CalcRangeDijkstra(ctx context.Context, g graph.IGraph, start int32, node_flags *Flags[DistFlag], heap *PriorityQueue[PQItem, float64], max_range float64, consumer func(int32, float64)) error {
	explorer := g.GetGraphExplorer()

	start_flag := node_flags.Get(start)
	start_flag.Dist = 0
	heap.Enqueue(PQItem{start, 0}, 0)

	pops := 0
	for {
		curr_item, ok := heap.Dequeue()
		if !ok {
			break
		}
		pops += 1
		if pops%_CTX_CHECK_INTERVAL == 0 {
			if err := ctx.Err(); err != nil {
				return eris.Wrap(err, "algorithm: search cancelled")
			}
		}
		curr_id := curr_item.item
		curr_flag := node_flags.Get(curr_id)
		if curr_flag.Settled || curr_flag.Dist < curr_item.dist {
			continue
		}
		curr_flag.Settled = true
		consumer(curr_id, curr_flag.Dist)
		explorer.ForAdjacentEdges(curr_id, graph.FORWARD, func(ref graph.EdgeRef) {
			other_id := ref.OtherID
			other_flag := node_flags.Get(other_id)
			if other_flag.Settled {
				return
			}
			new_length := curr_flag.Dist + explorer.GetEdgeWeight(ref)
			if new_length > max_range {
				return
			}
			if other_flag.Dist > new_length {
				other_flag.Dist = new_length
				heap.Enqueue(PQItem{other_id, new_length}, new_length)
			}
		})
	}
	return nil
}
