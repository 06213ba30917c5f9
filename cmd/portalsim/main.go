// Command portalsim runs the portal simulation headless: a crate and a player
// in front of a linked portal pair, stepped for a fixed number of frames. It
// prints a digest of the final state so runs can be compared.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/portals/internal/core/config"
	"github.com/zeusync/portals/internal/core/events/bus"
	"github.com/zeusync/portals/internal/core/geom"
	"github.com/zeusync/portals/internal/core/observability/log"
	"github.com/zeusync/portals/internal/core/portal"
	"github.com/zeusync/portals/internal/core/traveler"
	"github.com/zeusync/portals/internal/injector"
	"github.com/zeusync/portals/internal/scene"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML or JSON config file")
		frames     = flag.Int("frames", 300, "number of frames to simulate")
		dt         = flag.Float64("dt", 0, "override the configured fixed step, in seconds")
		realtime   = flag.Bool("realtime", false, "pace frames at the fixed step")
		telemetry  = flag.Bool("telemetry", false, "serve portal events over websocket")
		logLevel   = flag.String("log-level", "", "override the configured log level")
	)
	flag.Parse()

	if err := run(*configPath, *frames, *dt, *realtime, *telemetry, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, "portalsim:", err)
		os.Exit(1)
	}
}

func run(configPath string, frames int, dt float64, realtime, telemetry bool, logLevel string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if telemetry {
		cfg.Telemetry.Enabled = true
	}
	if dt > 0 {
		cfg.Physics.FixedStep = dt
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	logger := app.Logger.Named("portalsim")

	if err := buildScenario(app.Scene); err != nil {
		return err
	}
	if _, err := app.Events.Subscribe(portal.EventTeleported, func(ev bus.Event) error {
		if data, ok := ev.Data().(portal.TravelerEvent); ok {
			logger.Info("Teleported",
				log.String("portal", data.Name),
				log.String("traveler", data.Traveler.String()),
				log.Vec3("position", data.Position),
			)
		}
		return nil
	}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	simCtx, cancelSim := context.WithCancel(ctx)

	if cfg.Telemetry.Enabled {
		if err := app.Telemetry.Subscribe(portal.EventTypes...); err != nil {
			cancelSim()
			return err
		}
		g.Go(func() error {
			return app.Telemetry.Serve(simCtx, cfg.Telemetry.Addr)
		})
	}

	g.Go(func() error {
		defer cancelSim()
		return simulate(simCtx, app.Scene, frames, cfg.Physics.FixedStep, realtime, logger)
	})

	err = g.Wait()
	_ = app.Telemetry.Close()
	if err != nil {
		return err
	}

	frame := app.Scene.LastFrame()
	fmt.Printf("frames=%d draws=%d textures=%d events=%d digest=%016x\n",
		app.Scene.Pipeline().Frames(), frame.Draws, app.Recorder.Allocator().Live(),
		app.Events.Metrics().Published, app.Scene.Digest())
	return nil
}

func simulate(ctx context.Context, s *scene.Scene, frames int, dt float64, realtime bool, logger log.Log) error {
	var tick <-chan time.Time
	if realtime {
		ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}

	for i := 0; i < frames; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}
		if err := s.Step(dt); err != nil {
			logger.Warn("Frame finished with errors", log.Int("frame", i), log.Error(err))
		}
	}
	logger.Info("Simulation finished", log.Int("frames", frames))
	return nil
}

// buildScenario lays out the pair: blue at the origin facing +Z and orange
// ten metres down the Z axis facing back at it, a crate sliding into blue and
// the player watching orange.
func buildScenario(s *scene.Scene) error {
	s.AddCollider("floor", geom.AABB{Min: mgl64.Vec3{-50, -2, -50}, Max: mgl64.Vec3{50, -1, 50}})

	p, err := s.SpawnPortal(portal.SpawnOptions{
		Name: "blue",
		Pose: geom.Pose{Rotation: mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 1, 0})},
	})
	if err != nil {
		return err
	}
	if _, err := s.SpawnPortal(portal.SpawnOptions{
		Name:   "orange",
		Pose:   geom.Pose{Position: mgl64.Vec3{0, 0, 10}, Rotation: mgl64.QuatIdent()},
		LinkTo: p.ID(),
	}); err != nil {
		return err
	}

	crate := traveler.NewBody("crate", geom.NewPose(mgl64.Vec3{0, -0.75, 3}, 0), mgl64.Vec3{0.25, 0.25, 0.25},
		traveler.WithVelocity(mgl64.Vec3{0, 0, -3}))
	if err := s.AddTraveler(crate); err != nil {
		return err
	}
	return s.AddTraveler(traveler.NewPlayer(mgl64.Vec3{1.5, -0.1, 6}, 180, s.Config().Physics.Gravity))
}
