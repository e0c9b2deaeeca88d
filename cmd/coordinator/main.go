package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/Huddle/internal/adapters/http"
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/dkeye/Huddle/internal/transport"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.LoadCoordinator(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	codec, err := protocol.NewCodec(cfg.Codec)
	if err != nil {
		log.Fatal().Err(err).Msg("codec")
	}
	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		log.Fatal().Err(err).Str("listen", cfg.Listen).Msg("listen")
	}

	addr := router.Advertised(cfg.Advertise, ln)
	tr := transport.NewWebSocket(addr, codec, transport.Options{MailboxSize: cfg.MailboxSize})
	policy, err := app.PolicyByName(cfg.UndeliverablePolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("policy")
	}
	coord := app.NewCoordinator(tr, app.CoordinatorOptions{SendTimeout: cfg.SendTimeout, Policy: policy})
	r := router.SetupRouter(cfg.Mode, tr, coord)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return router.Serve(gctx, ln, r) })
	g.Go(func() error {
		if err := coord.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return tr.Close()
	})

	log.Info().Str("addr", string(addr)).Str("codec", codec.Name()).Msg("Huddle coordinator started")
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("coordinator exited with error")
		os.Exit(1)
	}
	log.Info().Msg("coordinator exited gracefully")
}
