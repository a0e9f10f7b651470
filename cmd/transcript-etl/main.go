package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"jyotchat-be/internal/config"
	"jyotchat-be/internal/dto"
	"jyotchat-be/internal/pkg/logger"
	"jyotchat-be/internal/repository/unitofwork"
	"jyotchat-be/internal/service"
	"jyotchat-be/pkg/database"
	"jyotchat-be/pkg/transcript"

	"github.com/fatih/color"
)

func main() {
	sessionKey := flag.String("session", "", "load one session (default: every session on disk)")
	dir := flag.String("dir", "", "transcript directory (default: TRANSCRIPT_DIR)")
	flag.Parse()

	cfg := config.Load()
	if *dir != "" {
		cfg.Transcript.Dir = *dir
	}

	bold := color.New(color.Bold)
	fail := color.New(color.FgRed, color.Bold)
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		fail.Fprintf(os.Stderr, "connect database: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer log.Sync()

	transcripts, err := transcript.NewLogger(cfg.Transcript.Dir, log)
	if err != nil {
		fail.Fprintf(os.Stderr, "open transcripts: %v\n", err)
		os.Exit(1)
	}
	etl := service.NewTranscriptEtlService(unitofwork.NewRepositoryFactory(db), transcripts, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bold.Printf("Loading transcripts from %s\n", cfg.Transcript.Dir)
	if *sessionKey != "" {
		res, err := etl.Process(ctx, *sessionKey)
		report(ok, warn, res)
		if err != nil {
			fail.Fprintf(os.Stderr, "session %s: %v\n", *sessionKey, err)
			os.Exit(1)
		}
		return
	}

	res, err := etl.ProcessAll(ctx)
	report(ok, warn, res)
	if err != nil {
		fail.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func report(ok, warn *color.Color, res *dto.EtlResult) {
	if res == nil {
		return
	}
	ok.Printf("sessions: %d  batches: %d  rows loaded: %d\n", res.Sessions, res.Batches, res.Rows)
	if res.Skipped > 0 {
		warn.Printf("batches already loaded (skipped): %d\n", res.Skipped)
	}
	if res.Rejected > 0 {
		warn.Printf("unmatched fragments quarantined: %d\n", res.Rejected)
	}
}
