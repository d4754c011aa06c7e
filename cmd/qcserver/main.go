// Command qcserver runs the quantum chess REST and WebSocket server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yourusername/qchess/internal/cache"
	"github.com/yourusername/qchess/internal/config"
	"github.com/yourusername/qchess/internal/scheduler"
	"github.com/yourusername/qchess/internal/store"
	"github.com/yourusername/qchess/pkg/api"
	"github.com/yourusername/qchess/pkg/logger"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	noArchive := flag.Bool("no-archive", false, "Disable the SQLite game archive")
	flag.Parse()

	if *showVersion {
		fmt.Printf("qcserver v%s\n", api.Version)
		os.Exit(0)
	}

	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobal(log)

	log.Info().
		Str("version", api.Version).
		Str("environment", cfg.Environment).
		Msg("starting qcserver")

	var archive *store.Store
	if !*noArchive {
		var err error
		archive, err = store.Open(cfg.DatabasePath, log)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("opening archive database")
		}
		defer archive.Close()
	}

	c := cache.New(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	manager := api.NewManager(cfg, archive, c, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.CacheSweepSpec, scheduler.NewCacheSweep(c, log)); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.CacheSweepSpec).Msg("scheduling cache sweep")
	}
	sched.Start()
	defer sched.Stop()

	srv := api.NewServer(cfg, manager, archive, log)
	if err := srv.ListenAndServeWithGracefulShutdown(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}
