package main

import (
	"fmt"

	"github.com/lcrostarosa/ploscope/internal/config"
	"github.com/lcrostarosa/ploscope/internal/server"
)

type ServeCmd struct {
	Config   string `kong:"default='ploscope.hcl',help='Path to HCL configuration file'"`
	Addr     string `kong:"help='Listen address (overrides config)'"`
	LogLevel string `kong:"help='Log level (overrides config)'"`
	Seed     *int64 `kong:"help='Deterministic deck seed (overrides config)'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	addr := cfg.Server.ListenAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger := setupLogger(cfg.Server.LogLevel)

	tbl, err := newTable(cfg, c.Seed, logger)
	if err != nil {
		return err
	}
	if _, err := tbl.StartHand(); err != nil {
		return err
	}

	logger.Info("starting gateway",
		"addr", addr,
		"players", len(cfg.Table.Players),
		"stakes", fmt.Sprintf("%d/%d", cfg.Table.SmallBlind, cfg.Table.BigBlind))

	srv := server.New(addr, tbl, logger)
	ctx := signalContext(logger)
	return srv.Run(ctx)
}
