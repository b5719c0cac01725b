package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"github.com/StoreStation/blockworld/internal/metrics"
	"github.com/StoreStation/blockworld/internal/session"
	"github.com/StoreStation/blockworld/internal/world"
)

const metricsLogInterval = 60 * time.Second

var cli struct {
	Address    string  `help:"TCP address to listen on." default:":25565"`
	Data       string  `help:"Data directory for world persistence." default:"./data"`
	XSize      int16   `help:"World X dimension, used only when generating a new world." default:"256"`
	YSize      int16   `help:"World Y dimension, used only when generating a new world." default:"64"`
	ZSize      int16   `help:"World Z dimension, used only when generating a new world." default:"256"`
	Height     float64 `help:"Base ground height the terrain generator offsets its height field by, used only when generating a new world." default:"20.0"`
	Seed       int64   `help:"World generation seed. 0 picks a time-derived seed." default:"0"`
	Name       string  `help:"Server name advertised to clients." default:"Classic Block Server"`
	MOTD       string  `help:"Server message of the day." default:"Welcome!"`
	Welcome    string  `help:"One-time chat line sent to every connecting socket. Empty disables it." default:"Welcome"`
	MaxPlayers int     `help:"Maximum concurrently connected players (capped at 127)." default:"64"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("blockworld-server"),
		kong.Description("Classic Block Game multiplayer server"),
		kong.UsageOnError())

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := os.MkdirAll(cli.Data, 0o755); err != nil {
		log.Error("create data directory", "dir", cli.Data, "err", err)
		os.Exit(1)
	}

	w, err := world.Load(cli.Data)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("load world, regenerating", "err", err)
		}
		seed := cli.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		log.Info("generating world", "x", cli.XSize, "y", cli.YSize, "z", cli.ZSize, "height", cli.Height, "seed", seed)
		w = world.Generate(cli.XSize, cli.YSize, cli.ZSize, cli.Height, seed)
	} else {
		x, y, z := w.Dimensions()
		log.Info("loaded persisted world", "x", x, "y", y, "z", z)
	}

	ln, err := net.Listen("tcp", cli.Address)
	if err != nil {
		log.Error("listen", "address", cli.Address, "err", err)
		os.Exit(1)
	}
	log.Info("listening", "address", cli.Address)

	run(log, ln, w)
}

func run(log *slog.Logger, ln net.Listener, w *world.World) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ids := session.NewIDAllocator(cli.MaxPlayers)
	pump := session.NewPump()
	m := metrics.New()
	orch := session.NewOrchestrator(session.Config{
		ServerName: cli.Name,
		ServerMOTD: cli.MOTD,
		Welcome:    cli.Welcome,
	}, w, ids, pump, log, m)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return orch.Run(gctx) })
	g.Go(func() error {
		return session.Serve(gctx, ln, ids, pump, log, session.ServerFullReason(cli.Name), m)
	})
	g.Go(func() error {
		world.RunPeriodicSave(gctx, cli.Data, w, log, func() { m.WorldSaves.Inc() })
		return nil
	})
	g.Go(func() error {
		m.RunPeriodicLog(gctx, metricsLogInterval, log)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("shut down cleanly")
}
