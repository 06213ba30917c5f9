package injector

import (
	"github.com/google/wire"
	"github.com/zeusync/portals/internal/core/config"
	"github.com/zeusync/portals/internal/core/events/bus"
	"github.com/zeusync/portals/internal/core/observability/log"
	"github.com/zeusync/portals/internal/core/render"
	"github.com/zeusync/portals/internal/scene"
	"github.com/zeusync/portals/internal/server"
)

// App is everything a headless simulation run needs.
type App struct {
	Config    *config.Config
	Logger    log.Log
	Events    bus.EventBus
	Recorder  *render.Recorder
	Scene     *scene.Scene
	Telemetry *server.WebSocketServer
}

func ProvideLogger(cfg *config.Config) log.Log {
	return log.New(log.ParseLevel(cfg.LogLevel), cfg.LogFormat)
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

func ProvideRecorder(cfg *config.Config) *render.Recorder {
	rec := render.NewRecorder(cfg.Viewport.Width, cfg.Viewport.Height)
	rec.SetHistory(render.DefaultHistory)
	return rec
}

func ProvideTelemetryConfig(cfg *config.Config) server.Config {
	c := server.DefaultConfig()
	c.Token = cfg.Telemetry.Token
	return c
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideEventBus,
	ProvideRecorder,
	wire.Bind(new(render.Renderer), new(*render.Recorder)),
	scene.New,
	ProvideTelemetryConfig,
	server.NewWebSocketServer,
	wire.Struct(new(App), "*"),
)
