// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present Defense Unicorns

// Package main is the entry point for the application
package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ennio-run/ennio/cmd"
	"github.com/ennio-run/ennio/mcptools"
)

func main() {
	// stdout carries the protocol, logs go to stderr
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "ennio-mcp",
	})
	logger.SetStyles(cmd.DefaultStyles())

	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok {
		version = bi.Main.Version
	}

	s := mcptools.NewServer(version)

	logger.Info("serving over stdio", "version", version)

	err := server.ServeStdio(s, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return log.WithContext(ctx, logger)
	}))
	if err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
