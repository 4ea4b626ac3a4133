package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/sandeep3158/strangercall/internal/adapters/http"
	"github.com/sandeep3158/strangercall/internal/adapters/media"
	"github.com/sandeep3158/strangercall/internal/adapters/relay"
	"github.com/sandeep3158/strangercall/internal/adapters/rtc"
	"github.com/sandeep3158/strangercall/internal/app"
	"github.com/sandeep3158/strangercall/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	gateway, err := media.NewGateway()
	if err != nil {
		log.Fatal().Err(err).Msg("media codec setup")
	}

	channel, err := relay.Dial(ctx, cfg.RelayURL)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.RelayURL).Msg("relay dial")
	}
	defer channel.Close()

	peers := rtc.NewFactory(cfg.STUNURLs, gateway.CodecSelector())
	ctl := app.NewController(channel, gateway, peers, cfg.SearchingTimeout, cfg.SignalingTimeout)

	r := router.SetupRouter(cfg, ctl)
	addr := fmt.Sprintf(":%d", cfg.APIPort)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("strangercall client started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	ctl.EndChat()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Client exited gracefully")
}
