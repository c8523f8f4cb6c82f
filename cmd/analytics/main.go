package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	polymarket "github.com/GoPolymarket/polymarket-go-sdk"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/gamma"

	"github.com/agentdash/agent-analytics/internal/api"
	"github.com/agentdash/agent-analytics/internal/app"
	"github.com/agentdash/agent-analytics/internal/config"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	profile := flag.String("profile", "", "deployment profile preset: demo|replay|live")
	modeOverride := flag.String("mode", "", "override mode: demo|replay|live")
	flag.Parse()

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		log.Printf("warning: config file: %v, using defaults", err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	if v := strings.ToLower(strings.TrimSpace(*modeOverride)); v != "" {
		cfg.Mode = v
	}
	if err := config.ApplyProfile(&cfg, *profile); err != nil {
		log.Fatalf("invalid -profile: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "demo"
	}

	log.Printf(
		"agent-analytics starting (mode=%s profile=%s min_samples=%d history=%t api=%s)",
		mode,
		strings.TrimSpace(*profile),
		cfg.Pattern.MinSamples,
		cfg.History.Enabled,
		cfg.API.Addr,
	)

	var gammaClient gamma.Client
	if mode == "live" {
		gammaClient = polymarket.NewClient().Gamma
	}

	a, err := app.New(cfg, gammaClient)
	if err != nil {
		log.Fatalf("app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(cfg.API.Addr, a)
		if err := apiServer.Start(ctx); err != nil {
			log.Printf("warning: api server failed to start: %v", err)
		}
	}

	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	if err := a.Run(ctx); err != nil && err != context.Canceled {
		log.Printf("run error: %v", err)
	}

	if apiServer != nil {
		_ = apiServer.Shutdown(context.Background())
	}
	a.Shutdown(context.Background())
}
