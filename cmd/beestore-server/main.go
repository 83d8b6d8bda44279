package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/go-kit/log/level"

	"github.com/Lz-Gustavo/beestore"
)

var cli struct {
	Config string `help:"Path to a TOML configuration file. Defaults built-in if omitted." type:"path"`
	Listen string `help:"Override listen_addr from the config file." default:""`
}

func main() {
	kong.Parse(&cli, kong.Description("beestore-server runs a single beestore reactor until interrupted."))

	cfg := beestore.DefaultConfig()
	if cli.Config != "" {
		loaded, err := beestore.LoadConfig(cli.Config)
		if err != nil {
			fmt.Fprintln(os.Stderr, "beestore-server:", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if cli.Listen != "" {
		cfg.ListenAddr = cli.Listen
	}

	logger := beestore.NewLogger(cfg.LogLevel)
	store := beestore.NewStore()

	reactor, err := beestore.NewReactor(cfg.ListenAddr, store, logger)
	if err != nil {
		level.Error(logger).Log("msg", "failed to start reactor", "err", err)
		os.Exit(1)
	}

	level.Info(logger).Log("msg", "listening", "addr", cfg.ListenAddr)
	if err := reactor.Run(); err != nil {
		level.Error(logger).Log("msg", "reactor exited", "err", err)
		os.Exit(1)
	}
}
