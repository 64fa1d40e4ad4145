package main

import (
	"context"

	"github.com/ttpr0/go-coverage/coverage"
	"github.com/ttpr0/go-coverage/output"
	"github.com/ttpr0/go-coverage/zone"
)

//**********************************************************
// isochrone handler
//**********************************************************

func HandleIsochroneRequest(ctx context.Context, req IsochroneRequest) Result {
	point, err := req.Point()
	if err != nil {
		return BadRequest(err.Error())
	}
	thresholds, err := coverage.NewThresholds(req.Range)
	if err != nil {
		return BadRequest(err.Error())
	}
	zone_property := MANAGER._GetServiceConfig().Output.ZoneProperty
	orchestrator := MANAGER.Orchestrator()

	if req.Zone == "" {
		polygons, err := orchestrator.Isochrones(ctx, point, thresholds)
		if err != nil {
			return _FailureResult(coverage.FailureKindOf(err), err.Error())
		}
		return OK(output.ResponseFeatures(polygons, "", zone_property))
	}

	station := coverage.Station{ID: "request", Point: point, ZoneID: req.Zone}
	polygons, outcome, err := orchestrator.StationIsochrones(ctx, station, MANAGER.ZoneIndex(), thresholds)
	if err != nil {
		return BadRequest(err.Error())
	}
	if outcome.Failure != coverage.NO_FAILURE {
		return _FailureResult(outcome.Failure, outcome.Message)
	}
	return OK(output.ResponseFeatures(polygons, "", zone_property))
}

func _FailureResult(kind coverage.FailureKind, message string) Result {
	switch kind {
	case coverage.UPSTREAM_DATA_MISSING:
		return NotFound(message)
	case coverage.INVALID_ZONE_GEOMETRY, coverage.EMPTY_REGION_GRAPH:
		return BadRequest(message)
	default:
		return InternalError(message)
	}
}

//**********************************************************
// zone handler
//**********************************************************

func HandleZoneRequest(ctx context.Context, req ZoneRequest) Result {
	zone_property := MANAGER._GetServiceConfig().Output.ZoneProperty
	if req.ID == "" {
		return OK(output.ZoneFeatures(MANAGER.Zones(), zone_property))
	}
	z := MANAGER.GetZone(req.ID)
	if !z.HasValue() {
		return NotFound("zone not found")
	}
	return OK(output.ZoneFeatures([]*zone.Zone{z.Value}, zone_property))
}

func HandleHealthRequest(ctx context.Context, req none) Result {
	return OK(HealthResponse{
		Status: "ok",
		Zones:  MANAGER.ZoneIndex().Len(),
		Nodes:  MANAGER.network.NodeCount(),
		Edges:  MANAGER.network.EdgeCount(),
		Graphs: MANAGER.graphs.Len(),
	})
}
