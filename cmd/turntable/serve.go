package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/turntable/internal/config"
	"github.com/edumarques81/turntable/internal/domain/artwork"
	"github.com/edumarques81/turntable/internal/domain/catalog"
	"github.com/edumarques81/turntable/internal/domain/player"
	"github.com/edumarques81/turntable/internal/infra/cache"
	"github.com/edumarques81/turntable/internal/infra/dropzone"
	"github.com/edumarques81/turntable/internal/infra/mpd"
	"github.com/edumarques81/turntable/internal/infra/speaker"
	"github.com/edumarques81/turntable/internal/infra/stream"
	"github.com/edumarques81/turntable/internal/infra/youtube"
	"github.com/edumarques81/turntable/internal/infra/ytdlp"
	"github.com/edumarques81/turntable/internal/transport/desktop"
	"github.com/edumarques81/turntable/internal/transport/mpris"
	"github.com/edumarques81/turntable/internal/transport/socketio"
	"github.com/edumarques81/turntable/internal/version"
)

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	info := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", info.String())
	log.Info().Msg("  Local files and remote streams, one queue")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Str("port", cfg.Server.Port).
		Str("mpd_host", cfg.MPD.Host).
		Int("mpd_port", cfg.MPD.Port).
		Bool("api_key_set", cfg.Remote.APIKey != "").
		Bool("cache", !cfg.Cache.Disabled).
		Str("dropzone", cfg.Dropzone.Dir).
		Msg("Configuration")

	// MPD plays remote streams. Local playback works without it, and the
	// client reconnects on demand.
	mpdClient := mpd.NewClient(cfg.MPD.Host, cfg.MPD.Port, cfg.MPD.Password)
	if err := mpdClient.Connect(); err != nil {
		log.Warn().Err(err).Msg("MPD unavailable; remote streams will fail until it is reachable")
	}
	defer mpdClient.Close()

	extractor := ytdlp.New(
		ytdlp.WithCookies(cfg.Remote.Cookies),
		ytdlp.WithInstall(cfg.Remote.InstallYtdlp),
	)

	device := speaker.NewDevice(speaker.DefaultSampleRate)
	output := mpd.NewOutput(mpdClient)
	backends := player.Backends(
		func() player.Adapter { return speaker.NewAdapter(device) },
		func() player.Adapter { return stream.NewAdapter(extractor, output) },
	)

	volume := socketio.NewVolume(float64(cfg.Player.Volume) / 100)
	playerService := player.NewService(backends, player.Options{
		StartDelay:       cfg.Player.StartDelay.Duration,
		ProgressInterval: cfg.Player.ProgressInterval.Duration,
		SeekOffset:       cfg.Player.SeekOffset.Duration,
		Volume:           volume.Get,
	})

	var resolver catalog.Resolver = extractor
	if cfg.Remote.APIKey != "" {
		resolver = youtube.NewClient(cfg.Remote.APIKey, youtube.WithUserAgent(info.UserAgent()))
	}

	var wg sync.WaitGroup
	var history historySource

	if !cfg.Cache.Disabled {
		db := cache.NewDB(cfg.Cache.Path)
		if err := db.Open(); err != nil {
			log.Warn().Err(err).Str("path", cfg.Cache.Path).Msg("Metadata cache unavailable")
		} else {
			defer db.Close()
			dao := cache.NewDAO(db)
			if n, err := dao.PruneStreams(time.Now().Add(-cfg.Cache.StreamTTL.Duration)); err != nil {
				log.Warn().Err(err).Msg("Failed to prune expired streams")
			} else if n > 0 {
				log.Info().Int64("pruned", n).Msg("Pruned expired streams")
			}
			dao.LogCacheStats()

			resolver = cache.NewResolver(resolver, dao, cfg.Cache.StreamTTL.Duration)

			playLog := cache.NewPlayLog(dao)
			playerService.AddPresenter(playLog)
			history = playLog
			wg.Add(1)
			go func() {
				defer wg.Done()
				playLog.Run(ctx)
			}()
		}
	}

	covers := artwork.NewFinder()
	catalogService := catalog.NewService(resolver, playerService, cfg.Remote.LookupTimeout.Duration,
		catalog.WithCovers(covers),
	)

	socketServer, err := socketio.NewServer(playerService, catalogService, volume,
		socketio.WithMaxExternal(cfg.Server.MaxClients),
	)
	if err != nil {
		return err
	}
	defer socketServer.Close()
	playerService.AddPresenter(socketServer)
	playerService.AddNowPlaying(socketServer)

	if cfg.Notify.Desktop {
		notifier, err := desktop.Connect(info.Name)
		if err != nil {
			log.Warn().Err(err).Msg("Desktop notifications unavailable")
		} else {
			defer notifier.Close()
			playerService.AddPresenter(notifier)
			wg.Add(1)
			go func() {
				defer wg.Done()
				notifier.Run(ctx)
			}()
		}
	}

	if cfg.MPRIS.Enabled {
		mprisServer, err := mpris.Start(cfg.MPRIS.Name, info.Name, playerService, volume)
		if err != nil {
			log.Warn().Err(err).Msg("MPRIS unavailable")
		} else {
			defer mprisServer.Close()
			playerService.AddNowPlaying(mprisServer)
		}
	}

	if cfg.Dropzone.Dir != "" {
		watcher := dropzone.New(cfg.Dropzone.Dir, catalogService,
			dropzone.WithSettle(cfg.Dropzone.Settle.Duration),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Str("dir", cfg.Dropzone.Dir).Msg("Drop folder watcher stopped")
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		playerService.Run(ctx)
	}()

	handler := corsMiddleware(newMux(routes{
		socket:    socketServer,
		snapshots: playerService,
		history:   history,
		covers:    covers,
		thumbs:    artwork.NewThumbnailer(filepath.Join(filepath.Dir(cfg.Cache.Path), "thumbs")),
		mpd:       mpdClient,
		staticDir: cfg.Server.StaticDir,
	}))
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		stop()
		wg.Wait()
		return err
	}

	wg.Wait()
	log.Info().Msg("Server stopped")
	return nil
}
