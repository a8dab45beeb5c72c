// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// markitdown-server converts remote documents to markdown over HTTP,
// guarding against SSRF and runaway resource use.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	markitdown "github.com/nicholasgasior/markitdown-server"
	"github.com/nicholasgasior/markitdown-server/internal/api"
	"github.com/nicholasgasior/markitdown-server/internal/config"
	"github.com/nicholasgasior/markitdown-server/internal/convert"
	"github.com/nicholasgasior/markitdown-server/internal/fetch"
	"github.com/nicholasgasior/markitdown-server/internal/logger"
	"github.com/nicholasgasior/markitdown-server/internal/memguard"
	"github.com/nicholasgasior/markitdown-server/internal/metrics"
	"github.com/nicholasgasior/markitdown-server/internal/pipeline"
	"github.com/nicholasgasior/markitdown-server/internal/security"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("markitdown-server", version)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "markitdown-server:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	guard := security.NewGuard(
		security.NewPolicy(cfg.Security.AllowedSchemes, cfg.Security.AllowedPorts), nil)

	downloader := fetch.New(guard, fetch.Options{
		MaxBytes:        cfg.Limits.MaxFileSize,
		DownloadTimeout: cfg.Limits.DownloadTimeout,
		UserAgent:       cfg.HTTP.UserAgent,
		MaxRedirects:    cfg.Security.MaxRedirects,
		MaxConnections:  cfg.HTTP.MaxConnections,
		MaxIdlePerHost:  cfg.HTTP.MaxIdleConnsPerHost,
	}, log)
	defer downloader.Close()

	mem, err := memguard.New(cfg.Limits.MaxMemoryIncrease)
	if err != nil {
		log.Warn("memory guard unavailable", "error", err)
		mem = nil
	}

	adapter := convert.New(markitdown.New(), cfg.Limits.ConversionTimeout, log)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	pipe := pipeline.New(guard, downloader, adapter, mem, m, log)
	server := api.New(cfg.Server, pipe, registry, version, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
