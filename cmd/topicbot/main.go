package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"topicbot/internal/app"
	"topicbot/internal/config"
	"topicbot/pkg/logx"
)

func main() {
	var cfgPath, schedule string
	flag.StringVar(&cfgPath, "config", "", "optional path to yaml config (environment overrides it)")
	flag.StringVar(&schedule, "schedule", "", "cron expression; when set, keep running and send on schedule")
	flag.Parse()

	cfg, err := config.Load(cfgPath, os.LookupEnv)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	log := logx.NewConsole(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfg, log)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	if schedule != "" {
		err = a.RunSchedule(ctx, schedule, cfgPath)
	} else {
		err = a.RunOnce(ctx)
	}
	_ = a.Close()
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}
