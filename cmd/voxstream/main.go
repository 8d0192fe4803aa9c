package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xlab/closer"

	"voxstream/internal/config"
	"voxstream/internal/extraction"
	"voxstream/internal/frame"
	"voxstream/internal/graphics"
	"voxstream/internal/meshing"
	"voxstream/internal/profiling"
	"voxstream/internal/streaming"
	"voxstream/internal/world"
)

func main() {
	defer closer.Close()

	var (
		configPath = flag.String("config", "", "path to a settings yaml (defaults when empty)")
		frames     = flag.Int("frames", 1200, "number of frames to fly before exiting (0 runs until interrupted)")
		speed      = flag.Float64("speed", 2, "camera speed in voxels per frame")
		logLevel   = flag.String("log_level", "", "override the configured log level")
		report     = flag.Duration("report", time.Second, "interval between status lines")
	)
	flag.Parse()

	settings := config.Default()
	if *configPath != "" {
		s, err := config.Load(*configPath)
		if err != nil {
			logrus.WithError(err).Fatal("load settings")
		}
		settings = s
	}
	if *logLevel != "" {
		settings.LogLevel = *logLevel
	}
	settings.Normalize()

	logger := config.NewLogger(settings)
	log := config.Component(logger, "main")

	pager, err := world.NewCachingPager(world.NewHeightmapPager(settings.World), settings.World.PageCacheEntries)
	if err != nil {
		log.WithError(err).Fatal("create page cache")
	}
	sched := extraction.New(settings, pager, meshing.CubicExtractor{}, config.Component(logger, "extraction"))
	ctrl := streaming.New(settings, sched, config.Component(logger, "streaming"))

	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(func() {
		cancel()
		st := sched.Stats()
		sched.Shutdown()
		pager.Close()
		hits, misses := pager.HitRatio()
		log.WithFields(logrus.Fields{
			"extracted":         st.Completed,
			"failed":            st.Failed,
			"unconsumed":        st.Queued,
			"page_cache_hits":   hits,
			"page_cache_misses": misses,
		}).Info("stopped")
	})

	sched.Start(ctx)
	cam := graphics.NewCamera(1280, 720)
	cam.FarPlane = settings.ViewDistance
	flight := newFlightPath(float32(*speed), float32(float64(settings.World.BaseHeight)+settings.World.Amplitude)+32)

	log.WithFields(logrus.Fields{
		"mesh_size":     settings.MeshSize,
		"view_distance": settings.ViewDistance,
		"pool":          settings.PoolCapacity,
		"workers":       settings.Workers,
	}).Info("streaming started")

	go func() {
		run(ctx, ctrl, cam, flight, frame.NewLimiter(settings.FPSLimit), *frames, *report, log)
		closer.Close()
	}()
	closer.Hold()
}

func run(ctx context.Context, ctrl *streaming.Controller, cam *graphics.Camera, flight *flightPath, limiter *frame.Limiter, frames int, report time.Duration, log *logrus.Entry) {
	lastReport := time.Now()
	for n := 0; frames <= 0 || n < frames; n++ {
		profiling.ResetFrame()
		flight.step(cam)
		ctrl.Tick(cam)
		batch := ctrl.Cull(cam)

		if time.Since(lastReport) >= report {
			st := ctrl.Stats()
			log.WithFields(logrus.Fields{
				"frame":     st.Frame,
				"resident":  st.Resident,
				"indexed":   st.Indexed,
				"pending":   st.Pending,
				"visible":   st.Culled,
				"evicted":   st.Evicted,
				"dropped":   st.Dropped,
				"triangles": len(batch.Indices) / 3,
				"top":       profiling.TopN(3),
			}).Info("frame")
			lastReport = time.Now()
		}
		if err := limiter.Wait(ctx); err != nil {
			return
		}
	}
}
