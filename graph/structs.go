package graph

import (
	"github.com/paulmach/orb"
)

//*******************************************
// graph structs
//*******************************************

type Edge struct {
	NodeA int32
	NodeB int32
}

type Node struct {
	// lon/lat
	Loc orb.Point
	// projected coordinate in meters
	Point orb.Point
}

//*******************************************
// edgeref struct
//*******************************************

type EdgeRef struct {
	EdgeID  int32
	OtherID int32
}

//*******************************************
// adjacency array
//*******************************************

type _AdjEntry struct {
	EdgeID  int32
	OtherID int32
}

// Compressed adjacency of all nodes, edges of node i are stored in entries[start[i]:start[i+1]].
type _AdjacencyArray struct {
	fwd_start   []int32
	fwd_entries []_AdjEntry
	bwd_start   []int32
	bwd_entries []_AdjEntry
}

func (self *_AdjacencyArray) GetAdjacency(node int32, dir Direction) []_AdjEntry {
	if dir == FORWARD {
		return self.fwd_entries[self.fwd_start[node]:self.fwd_start[node+1]]
	}
	return self.bwd_entries[self.bwd_start[node]:self.bwd_start[node+1]]
}

func (self *_AdjacencyArray) GetDegree(node int32, dir Direction) int32 {
	if dir == FORWARD {
		return self.fwd_start[node+1] - self.fwd_start[node]
	}
	return self.bwd_start[node+1] - self.bwd_start[node]
}
