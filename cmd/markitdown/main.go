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

// markitdown converts a local file or a remote URL to markdown on the
// command line. URLs go through the same security validation and
// resource limits as the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	markitdown "github.com/nicholasgasior/markitdown-server"
	"github.com/nicholasgasior/markitdown-server/internal/config"
	"github.com/nicholasgasior/markitdown-server/internal/convert"
	"github.com/nicholasgasior/markitdown-server/internal/fetch"
	"github.com/nicholasgasior/markitdown-server/internal/logger"
	"github.com/nicholasgasior/markitdown-server/internal/pipeline"
	"github.com/nicholasgasior/markitdown-server/internal/security"
)

func main() {
	output := flag.String("o", "", "write markdown to file instead of stdout")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-o output.md] <file-or-url>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	md, err := render(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "markitdown:", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(md), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "markitdown:", err)
			os.Exit(1)
		}
		return
	}
	fmt.Print(md)
	if !strings.HasSuffix(md, "\n") {
		fmt.Println()
	}
}

func render(target string) (string, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return renderURL(target)
	}
	if target == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		result, err := markitdown.New().ConvertBytes(data, markitdown.SourceInfo{})
		if err != nil {
			return "", err
		}
		return result.Markdown, nil
	}
	result, err := markitdown.New().ConvertFile(target)
	if err != nil {
		return "", err
	}
	return result.Markdown, nil
}

func renderURL(rawURL string) (string, error) {
	cfg := config.Default()
	log := logger.NewNop()

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
	adapter := convert.New(markitdown.New(), cfg.Limits.ConversionTimeout, log)
	pipe := pipeline.New(guard, downloader, adapter, nil, nil, log)

	out := pipe.Run(context.Background(), rawURL)
	if !out.Success {
		return "", out.Err
	}
	return out.Markdown, nil
}
