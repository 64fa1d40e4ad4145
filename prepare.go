package main

import (
	"context"
	"sort"
	"time"

	"github.com/ttpr0/go-coverage/coverage"
	. "github.com/ttpr0/go-coverage/util"
	"github.com/ttpr0/go-coverage/zone"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

const GRAPHS_FILE = "graphs.json"

type GraphStats struct {
	ZoneID string `json:"zone_id"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
	// weighting of the built graph, thresholds are in its unit
	Weighting string               `json:"weighting,omitempty"`
	Failure   coverage.FailureKind `json:"failure,omitempty"`
	Message   string               `json:"message,omitempty"`
	Took      time.Duration        `json:"took"`
}

// Builds the graph of every zone ahead of a run and reports graph sizes and failures.
//
// Zones with invalid geometry are reported without building a graph.
func PrepareZoneGraphs(ctx context.Context, manager *CoverageManager, workers int) (List[GraphStats], error) {
	zones := manager.Zones()
	stats := make([]GraphStats, len(zones))
	clipper := zone.NewClipper()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, z := range zones {
		i, z := i, z
		g.Go(func() error {
			start := time.Now()
			stat := GraphStats{ZoneID: z.ID}
			if err := clipper.Validate(z); err != nil {
				stat.Failure = coverage.FailureKindOf(err)
				stat.Message = err.Error()
				stats[i] = stat
				return nil
			}
			graph, err := manager.orchestrator.ZoneGraph(gctx, z)
			stat.Took = time.Since(start)
			if err != nil {
				stat.Failure = coverage.FailureKindOf(err)
				stat.Message = err.Error()
			} else {
				stat.Nodes = graph.NodeCount()
				stat.Edges = graph.EdgeCount()
				stat.Weighting = graph.Weighting().String()
			}
			stats[i] = stat
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].ZoneID < stats[j].ZoneID
	})
	failed := 0
	for _, stat := range stats {
		if stat.Failure != coverage.NO_FAILURE {
			failed += 1
			slog.Warn("zone graph unavailable", "zone", stat.ZoneID, "kind", stat.Failure.String(), "reason", stat.Message)
		}
	}
	slog.Info("prepared zone graphs", "zones", len(stats), "failed", failed)
	return stats, nil
}
