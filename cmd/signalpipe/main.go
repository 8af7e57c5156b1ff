// Copyright The SignalPipe Authors
// SPDX-License-Identifier: Apache-2.0

// Program signalpipe runs the telemetry collector: it loads the configured
// pipelines and keeps them running until a shutdown signal or a fatal
// component error arrives.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/config"
	"github.com/signalpipe/signalpipe/config/configunmarshaler"
	"github.com/signalpipe/signalpipe/service"
	"github.com/signalpipe/signalpipe/service/defaultcomponents"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cobra.Command {
	var configPath string
	buildInfo := component.NewDefaultBuildInfo()

	cmd := &cobra.Command{
		Use:          buildInfo.Command,
		Short:        buildInfo.Description,
		Version:      buildInfo.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, buildInfo)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the configuration file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func run(configPath string, buildInfo component.BuildInfo) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	factories, err := defaultcomponents.Components()
	if err != nil {
		return fmt.Errorf("failed to build component factories: %w", err)
	}

	cfgMap, err := config.NewMapFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config %q: %w", configPath, err)
	}
	cfg, err := configunmarshaler.Unmarshal(cfgMap, factories)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config %q: %w", configPath, err)
	}

	svc, err := service.New(service.Settings{
		BuildInfo: buildInfo,
		Factories: factories,
		Config:    cfg,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err = svc.Start(ctx); err != nil {
		return multierr.Append(err, svc.Shutdown(ctx))
	}

	signalsChannel := make(chan os.Signal, 1)
	signal.Notify(signalsChannel, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-signalsChannel:
		logger.Info("Received signal, shutting down...", zap.String("signal", sig.String()))
	case err = <-svc.AsyncErrors():
		logger.Error("Fatal component error, shutting down...", zap.Error(err))
	}
	return multierr.Append(err, svc.Shutdown(ctx))
}
