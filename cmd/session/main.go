package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Huddle/internal/adapters/console"
	"github.com/dkeye/Huddle/internal/adapters/filestore"
	router "github.com/dkeye/Huddle/internal/adapters/http"
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/protocol"
	"github.com/dkeye/Huddle/internal/transport"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.LoadSession(os.Args[1:])
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
	out := console.NewWriter(os.Stdout)
	sess := app.NewSession(tr, domain.Endpoint(cfg.Coordinator), out, filestore.NewOS(cfg.DownloadDir), app.SessionOptions{
		RequestTimeout: cfg.RequestTimeout,
		InviteTimeout:  cfg.InviteTimeout,
	})
	r := router.SetupRouter(cfg.Mode, tr, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return router.Serve(gctx, ln, r) })
	// the session keeps draining its mailbox until the transport closes,
	// so the farewell Disconnect below still gets its reply.
	g.Go(func() error { return sess.Run(context.Background()) })

	// stdin reads cannot be interrupted, so the console stays outside the group
	// and ends the process when the input does.
	go func() {
		if err := console.New(sess, out).Run(gctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("console")
		}
		cancel()
	}()

	log.Info().Str("addr", string(addr)).Str("coordinator", cfg.Coordinator).Msg("Huddle session started")
	<-gctx.Done()

	if sess.User() != "" {
		byeCtx, byeCancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+time.Second)
		sess.Disconnect(byeCtx)
		byeCancel()
	}
	_ = tr.Close()
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("session exited with error")
		os.Exit(1)
	}
}
