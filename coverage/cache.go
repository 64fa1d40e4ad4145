package coverage

import (
	"context"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/graph"
	. "github.com/ttpr0/go-coverage/util"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/singleflight"
)

type IGraphBuilder interface {
	Build(ctx context.Context, region orb.MultiPolygon) (*graph.RoadGraph, error)
}

type _CacheEntry struct {
	graph *graph.RoadGraph
	err   error
}

// Road graphs memoized by key (zone id or region), at most one build runs per key.
//
// Build failures are cached as well.
type GraphCache struct {
	builder  IGraphBuilder
	group    singleflight.Group
	mu       sync.RWMutex
	entries  Dict[string, _CacheEntry]
	observer func(key string, g *graph.RoadGraph, duration time.Duration)
}

func NewGraphCache(builder IGraphBuilder) *GraphCache {
	return &GraphCache{
		builder: builder,
		entries: NewDict[string, _CacheEntry](16),
	}
}

// Registers a callback invoked after every successful build.
func (self *GraphCache) OnBuild(callback func(key string, g *graph.RoadGraph, duration time.Duration)) {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.observer = callback
}

// Returns the graph for key, building it from region on first use.
//
// The build itself is not bound to ctx so that waiting callers share it, ctx only limits
// how long this caller waits.
func (self *GraphCache) Get(ctx context.Context, key string, region orb.MultiPolygon) (*graph.RoadGraph, error) {
	self.mu.RLock()
	entry, ok := self.entries[key]
	self.mu.RUnlock()
	if ok {
		return entry.graph, entry.err
	}

	ch := self.group.DoChan(key, func() (any, error) {
		self.mu.RLock()
		entry, ok := self.entries[key]
		self.mu.RUnlock()
		if ok {
			return entry.graph, entry.err
		}
		start := time.Now()
		g, err := self.builder.Build(context.WithoutCancel(ctx), region)
		self.mu.Lock()
		self.entries[key] = _CacheEntry{graph: g, err: err}
		observer := self.observer
		self.mu.Unlock()
		if err != nil {
			slog.Warn("coverage: graph build failed", "key", key, "error", err.Error())
			return nil, err
		}
		slog.Info("coverage: graph built", "key", key, "nodes", g.NodeCount(), "edges", g.EdgeCount(), "took", time.Since(start))
		if observer != nil {
			observer(key, g, time.Since(start))
		}
		return g, nil
	})
	select {
	case <-ctx.Done():
		return nil, eris.Wrapf(ctx.Err(), "coverage: waiting for graph %s", key)
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*graph.RoadGraph), nil
	}
}

// Number of cached graphs and failures.
func (self *GraphCache) Len() int {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return len(self.entries)
}
