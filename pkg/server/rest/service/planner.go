package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/golang/geo/r2"

	"github.com/fieldops/coursenav/pkg/course"
	"github.com/fieldops/coursenav/pkg/datastructure"
	"github.com/fieldops/coursenav/pkg/engine/coursesearch"
	"github.com/fieldops/coursenav/pkg/grid"
	"github.com/fieldops/coursenav/pkg/kv"
	"github.com/fieldops/coursenav/pkg/server"
	"github.com/fieldops/coursenav/pkg/util"
)

type MapProvider interface {
	FetchMap(ctx context.Context) (*grid.OccupancyGrid, error)
}

type AppendixFinder interface {
	FindAppendix(g *course.Graph, cg *grid.CollisionGrid, pose datastructure.Pose, reversed bool) ([]datastructure.Pose, bool)
}

type CoursePlanner interface {
	FindCoursePath(g *course.Graph, startSegment, endSegment int32, startPt, endPt r2.Point) ([]datastructure.Pose, float64, bool)
}

type PathCache interface {
	GetPath(key string) ([]datastructure.Pose, float64, error)
	PutPath(key string, path []datastructure.Pose, cost float64) error
}

type SegmentBinder func(g *course.Graph, pose datastructure.Pose) (int32, r2.Point, bool)

// Footprint is the vehicle extent used to refresh the collision grid.
// SizeBackward extends behind the reference point and is negative.
type Footprint struct {
	SizeForward  float64
	SizeBackward float64
	SizeWidth    float64
}

func DefaultFootprint() Footprint {
	return Footprint{
		SizeForward:  0.4,
		SizeBackward: -0.6,
		SizeWidth:    0.5,
	}
}

// PlanningService is the full planning pipeline: fetch the current map,
// connect both mission endpoints to the course, search the course graph and
// stitch the pieces together. The collision grid is reused across calls as
// long as the map dimensions stay the same.
type PlanningService struct {
	graph     *course.Graph
	maps      MapProvider
	appendix  AppendixFinder
	planner   CoursePlanner
	cache     PathCache
	bind      SegmentBinder
	footprint Footprint

	mu sync.Mutex
	cg *grid.CollisionGrid
}

func NewPlanningService(g *course.Graph, maps MapProvider, appendix AppendixFinder,
	planner CoursePlanner, cache PathCache, bind SegmentBinder, footprint Footprint) *PlanningService {
	return &PlanningService{
		graph:     g,
		maps:      maps,
		appendix:  appendix,
		planner:   planner,
		cache:     cache,
		bind:      bind,
		footprint: footprint,
	}
}

// FindPath plans the full pose path from start to end. Planning failures that
// mean "no drivable path" (unreachable course, unbindable endpoint) return an
// empty path and no error; only infrastructure failures surface as errors.
func (s *PlanningService) FindPath(ctx context.Context, start, end datastructure.Pose) ([]datastructure.Pose, float64, error) {
	key := kv.PathKey(start, end)
	if s.cache != nil {
		cached, cost, err := s.cache.GetPath(key)
		if err == nil && len(cached) > 0 {
			log.Printf("path cache hit for %s", key)
			return cached, cost, nil
		}
		if err != nil && !errors.Is(err, kv.ErrPathNotFound) {
			log.Printf("path cache read failed: %v", err)
		}
	}

	occ, err := s.maps.FetchMap(ctx)
	if err != nil {
		return nil, 0, server.WrapErrorf(err, server.ErrUnavailable, "map provider unavailable")
	}
	cg := s.refreshCollisionGrid(occ)

	startAppendix, ok := s.appendix.FindAppendix(s.graph, cg, start, false)
	if !ok {
		log.Printf("no appendix from start pose (%f, %f), returning empty path", start.X, start.Y)
		return []datastructure.Pose{}, 0, nil
	}
	startBind := start
	if len(startAppendix) > 0 {
		startBind = startAppendix[len(startAppendix)-1]
	}
	startSegment, startPt, ok := s.bind(s.graph, startBind)
	if !ok {
		log.Printf("start pose (%f, %f) does not bind to any segment, returning empty path", startBind.X, startBind.Y)
		return []datastructure.Pose{}, 0, nil
	}

	endAppendix, ok := s.appendix.FindAppendix(s.graph, cg, end, true)
	if !ok {
		log.Printf("no appendix to end pose (%f, %f), returning empty path", end.X, end.Y)
		return []datastructure.Pose{}, 0, nil
	}
	endBind := end
	if len(endAppendix) > 0 {
		// the appendix was searched from the end pose toward the course,
		// flip it to run course -> end pose
		endAppendix = util.ReverseG(endAppendix)
		endBind = endAppendix[0]
	}
	endSegment, endPt, ok := s.bind(s.graph, endBind)
	if !ok {
		log.Printf("end pose (%f, %f) does not bind to any segment, returning empty path", endBind.X, endBind.Y)
		return []datastructure.Pose{}, 0, nil
	}

	centre, cost, ok := s.planner.FindCoursePath(s.graph, startSegment, endSegment, startPt, endPt)
	if !ok {
		log.Printf("no course path from segment %d to segment %d, returning empty path", startSegment, endSegment)
		return []datastructure.Pose{}, 0, nil
	}

	full := coursesearch.Combine(startAppendix, centre, endAppendix)

	if s.cache != nil {
		if err := s.cache.PutPath(key, full, cost); err != nil {
			log.Printf("path cache write failed: %v", err)
		}
	}
	return full, cost, nil
}

func (s *PlanningService) refreshCollisionGrid(occ *grid.OccupancyGrid) *grid.CollisionGrid {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cg == nil || !s.cg.SameDimensions(occ) {
		s.cg = grid.NewCollisionGrid(occ, s.footprint.SizeForward, s.footprint.SizeBackward, s.footprint.SizeWidth)
	} else {
		s.cg.SetFromOccupancy(occ)
	}
	return s.cg
}
