package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/robfig/cron/v3"

	"github.com/umputun/feed-digest/pkg/config"
	"github.com/umputun/feed-digest/pkg/digest"
	"github.com/umputun/feed-digest/pkg/feed"
	"github.com/umputun/feed-digest/pkg/notify"
	"github.com/umputun/feed-digest/pkg/store"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"f" long:"config" env:"CONFIG" default:"feed-digest.yml" description:"config file"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)

	log.Printf("[INFO] starting feed-digest version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes a single digest pass, or a cron loop when schedule is set.
// The rendered digest goes to out unless SMTP delivery is configured.
func run(ctx context.Context, opts Opts, out io.Writer) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fetcher := feed.NewFetcher(cfg.Settings.Timeout, cfg.Settings.UserAgent)
	aggregator := digest.NewAggregator(fetcher, feed.NewParser(), cfg.Settings.MaxConcurrent)

	renderer, err := digest.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	var sender *notify.Email
	if cfg.EmailEnabled() {
		sender = notify.NewEmail(cfg.SMTP)
	}

	if cfg.Schedule != "" {
		return runScheduled(ctx, cfg, aggregator, renderer, sender, out)
	}
	return runOnce(ctx, cfg, aggregator, renderer, sender, out)
}

// runOnce does one full aggregation pass: load seen state, process feeds,
// emit the digest, persist seen state
func runOnce(ctx context.Context, cfg *config.Config, aggregator *digest.Aggregator,
	renderer *digest.Renderer, sender *notify.Email, out io.Writer) error {

	seenStore := store.NewStore(cfg.Settings.SeenArticlesFile)
	seen := seenStore.Load()
	log.Printf("[DEBUG] loaded %d seen links from %s", seen.Len(), cfg.Settings.SeenArticlesFile)

	result := aggregator.Process(ctx, cfg.Feeds, seen, cfg.Settings.ArticleAgeDays)

	htmlDoc, err := renderer.Render(result, cfg.Settings.ArticleAgeDays)
	if err != nil {
		return fmt.Errorf("failed to render digest: %w", err)
	}

	if sender != nil {
		if err := sender.Send(ctx, cfg.SMTP.Subject, htmlDoc); err != nil {
			return fmt.Errorf("failed to deliver digest: %w", err)
		}
	} else {
		fmt.Fprintln(out, htmlDoc)
	}

	fmt.Fprintf(os.Stderr, "Processed %d feeds, found %d new articles\n", len(cfg.Feeds), result.Total)

	// persisted only after the digest is out, so a crash never marks
	// articles seen without delivering them
	if err := seenStore.Save(seen); err != nil {
		return fmt.Errorf("failed to save seen state: %w", err)
	}
	return nil
}

// runScheduled runs the digest pass on a cron schedule until the context is
// canceled
func runScheduled(ctx context.Context, cfg *config.Config, aggregator *digest.Aggregator,
	renderer *digest.Renderer, sender *notify.Email, out io.Writer) error {

	log.Printf("[INFO] scheduled mode, cron %q", cfg.Schedule)

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() {
		if err := runOnce(ctx, cfg, aggregator, renderer, sender, out); err != nil {
			log.Printf("[ERROR] digest run failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule digest: %w", err)
	}

	c.Start()
	<-ctx.Done()

	// let an in-flight run finish before returning
	<-c.Stop().Done()
	log.Printf("[INFO] scheduler stopped")
	return nil
}

func setupLog(dbg, noColor bool) {
	// stdout carries the digest document, all logging goes to stderr
	logOpts := []lgr.Option{lgr.Out(os.Stderr), lgr.Err(os.Stderr)}
	if dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError)
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
