package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zulandar/gatedesk/internal/config"
	"github.com/zulandar/gatedesk/internal/notify"
	"github.com/zulandar/gatedesk/internal/queue"
	"github.com/zulandar/gatedesk/internal/scheduler"
	"github.com/zulandar/gatedesk/internal/server"
	"github.com/zulandar/gatedesk/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the appointment API and display event stream",
		Long:  "Runs the Gatedesk HTTP server with the minute status tick and the midnight rollover.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gatedesk.yaml", "path to Gatedesk config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Port = port
	}

	hub := notify.NewHub()
	eng, err := queue.New(queue.Options{
		Store:        store.New(cfg.DataDir),
		Notifier:     hub,
		DisplaySize:  cfg.DisplaySize,
		OpenMinutes:  cfg.OpenMinutes(),
		CloseMinutes: cfg.CloseMinutes(),
	})
	if err != nil {
		return err
	}

	sched, err := scheduler.New(nil,
		scheduler.Job{
			Name: "status",
			Expr: cfg.Schedule.StatusCron,
			Run: func() {
				eng.RefreshActiveStatus(time.Now())
			},
		},
		scheduler.Job{
			Name: "rollover",
			Expr: cfg.Schedule.RolloverCron,
			Run: func() {
				if err := eng.Rollover(); err != nil {
					log.Printf("rollover: %v", err)
				}
			},
		},
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	go sched.Run(ctx)

	fmt.Fprintf(cmd.OutOrStdout(), "Serving day %s from %s\n", eng.DayKey(), cfg.DataDir)
	return server.Start(ctx, server.StartOpts{
		Engine: eng,
		Hub:    hub,
		Port:   cfg.Port,
		Out:    cmd.OutOrStdout(),
	})
}
