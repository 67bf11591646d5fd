package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"ghpool-go/internal/config"
	"ghpool-go/internal/github"
	"ghpool-go/internal/logging"

	log "github.com/sirupsen/logrus"
)

// ghprobe probes the remaining quota of every configured token and prints a
// table. Exit status is non-zero when any probe fails.
func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall probe timeout")
	flag.Parse()

	if err := logging.Setup(logging.Options{}); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	client, err := github.FromConfig(cfg, nil)
	if err != nil {
		log.WithError(err).Fatal("failed to build client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOKEN\tREMAINING\tSTATUS")

	failed := false
	for _, token := range client.Ring().All() {
		remaining, err := client.ProbeRateLimit(ctx, token)
		if err != nil {
			failed = true
			fmt.Fprintf(w, "%s\t-\t%v\n", token.Masked(), err)
			continue
		}
		status := "ok"
		if remaining <= cfg.RotationThreshold {
			status = "below threshold"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", token.Masked(), remaining, status)
	}
	_ = w.Flush()

	if failed {
		os.Exit(1)
	}
}
