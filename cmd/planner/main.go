package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang/geo/r2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldops/coursenav/pkg/course"
	"github.com/fieldops/coursenav/pkg/engine/coursesearch"
	"github.com/fieldops/coursenav/pkg/kv"
	"github.com/fieldops/coursenav/pkg/mapprovider"
	"github.com/fieldops/coursenav/pkg/server/rest"
	"github.com/fieldops/coursenav/pkg/server/rest/service"
	"github.com/fieldops/coursenav/pkg/snap"
)

var (
	listenAddr  = flag.String("listenaddr", ":5000", "server listen address")
	courseFile  = flag.String("f", "course.bin", "course graph file, generated when missing")
	mapEndpoint = flag.String("mapendpoint", mapprovider.DefaultEndpoint, "occupancy map service endpoint")
	cacheDir    = flag.String("cachedir", "./coursenav-cache", "badger path cache directory")

	backwardPenalty = flag.Float64("backwardpenalty", 2.5, "cost factor for backward driving")
	turningPenalty  = flag.Float64("turningpenalty", 5.0, "fixed cost per direction reversal")
	turningSegment  = flag.Float64("turningsegment", 0.7, "straight clearance pulled at a reversal, meters")

	sizeForward  = flag.Float64("sizeforward", 0.4, "vehicle footprint ahead of the reference point, meters")
	sizeBackward = flag.Float64("sizebackward", -0.6, "vehicle footprint behind the reference point, meters")
	sizeWidth    = flag.Float64("sizewidth", 0.5, "vehicle footprint width, meters")
)

func main() {
	flag.Parse()

	graph, err := course.LoadFromFile(*courseFile)
	if err != nil {
		log.Printf("loading course %s failed (%v), generating demo course", *courseFile, err)
		graph = demoCourse()
		if err := course.SaveToFile(graph, *courseFile); err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("course loaded: %d segments, %d transitions", graph.NumSegments(), graph.NumTransitions())

	db, err := badger.Open(badger.DefaultOptions(*cacheDir))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(rest.PromeHttpMiddleware(m))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	planner := coursesearch.NewPlanner(coursesearch.Config{
		BackwardPenaltyFactor:  *backwardPenalty,
		TurningPenalty:         *turningPenalty,
		TurningStraightSegment: *turningSegment,
	})

	plannerSvc := service.NewPlanningService(
		graph,
		mapprovider.NewClient(*mapEndpoint),
		snap.NewAppendixFinder(),
		planner,
		kv.NewPathCache(db),
		snap.BindToSegment,
		service.Footprint{
			SizeForward:  *sizeForward,
			SizeBackward: *sizeBackward,
			SizeWidth:    *sizeWidth,
		},
	)

	rest.PlannerRouter(r, plannerSvc, m)

	fmt.Printf("\nserver started at %s\n", *listenAddr)

	log.Fatal(http.ListenAndServe(*listenAddr, r))
}

// demoCourse is a small boustrophedon field used when no course file exists.
func demoCourse() *course.Graph {
	rows := make([]course.Row, 0, 6)
	for i := 0; i < 6; i++ {
		y := float64(i) * 2.0
		rows = append(rows, course.Row{
			Start: r2.Point{X: 0, Y: y},
			End:   r2.Point{X: 20, Y: y},
		})
	}
	return course.BuildBoustrophedonCourse(rows)
}
