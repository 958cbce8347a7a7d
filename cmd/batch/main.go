package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/geoconv/internal/config"
	"github.com/woozymasta/geoconv/internal/convert"
	"github.com/woozymasta/geoconv/internal/logger"
	"github.com/woozymasta/geoconv/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Limit       []string `short:"l" long:"limit"       env:"LIMIT_NAMES" description:"Limit processing to specific job names"`
	Concurrency int      `short:"p" long:"concurrency" env:"CONCURRENCY" description:"Concurrency" default:"4"`
	Timeout     int      `short:"T" long:"timeout"     env:"TIMEOUT"     description:"Download timeout in seconds" default:"15"`
	Force       bool     `short:"f" long:"force"       description:"Force overwrite of existing files"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 15
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
		Timeout: time.Duration(opts.Timeout) * time.Second,
	}

	// Filter jobs if limit is set
	jobsToProcess := cfg.Jobs
	if len(opts.Limit) > 0 {
		jobsToProcess = make([]config.Job, 0)
		availableJobs := make(map[string]config.Job)
		for _, j := range cfg.Jobs {
			availableJobs[j.Name] = j
		}

		seen := make(map[string]bool)

		for _, limitName := range opts.Limit {
			if seen[limitName] {
				continue
			}
			seen[limitName] = true

			if j, ok := availableJobs[limitName]; ok {
				jobsToProcess = append(jobsToProcess, j)
			} else {
				log.Error().
					Str("name", limitName).
					Msg("Job specified in --limit not found in configuration")
			}
		}
	}

	log.Info().
		Int("jobs_total", len(cfg.Jobs)).
		Int("jobs_queued", len(jobsToProcess)).
		Int("concurrency", opts.Concurrency).
		Bool("force", opts.Force).
		Msg("Starting batch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &processor.Processor{
		Client:      client,
		Converter:   convert.Converter{MaxDepth: cfg.MaxDepth},
		Concurrency: opts.Concurrency,
		Force:       opts.Force,
	}
	results := p.Run(ctx, jobsToProcess)

	skipped := 0
	for _, r := range results {
		if r.Skipped {
			skipped++
		}
	}
	failed := processor.Failed(results)

	log.Info().
		Int("converted", len(results)-failed-skipped).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("Batch finished")

	if failed > 0 {
		stop()
		os.Exit(1)
	}
}
