package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cafe-ordering/internal/app/api"
	"cafe-ordering/internal/app/notify"
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/config"
)

const modes = "api-service | notification-subscriber"

func main() {
	mode := flag.String("mode", "", modes)
	cfgPath := flag.String("config", "config.yaml", "path to YAML config")
	port := flag.Int("port", 0, "api-service: http port (overrides http.port)")
	flag.Parse()

	lg := logger.New("bootstrap")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		lg.Error("config_load_failed", err, map[string]any{"path": *cfgPath})
		os.Exit(2)
	}
	logger.SetLevel(cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "api-service":
		if *port == 0 {
			*port = cfg.HTTP.Port
		}
		err = api.Run(ctx, cfg, *port)
	case "notification-subscriber":
		err = notify.Run(ctx, cfg)
	default:
		fmt.Fprintln(os.Stderr, "--mode is required: "+modes)
		os.Exit(2)
	}
	if err != nil {
		lg.Error("fatal", err, map[string]any{"mode": *mode})
		os.Exit(1)
	}
	lg.Info("service_stopped", map[string]any{"mode": *mode})
}
