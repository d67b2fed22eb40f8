/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Command jxrouter runs the routing hub: it loads configuration, wires up
// logging and metrics, and serves the component listener until signaled to
// stop.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ortuman/jxrouter/internal/config"
	"github.com/ortuman/jxrouter/internal/log"
	"github.com/ortuman/jxrouter/internal/router"
)

func main() {
	configPath := flag.String("config", "jxrouter.yml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	if err := log.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.Listen, err)
	}
	log.Infof("listening on %s", cfg.Listen)

	r := router.New(cfg)

	stop := make(chan struct{})
	go r.Run(stop)

	if cfg.Metrics.Listen != "" {
		go serveMetrics(cfg.Metrics.Listen)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- r.Serve(ln, stop) }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	select {
	case <-ctx.Done():
		log.Infof("shutting down")
		close(stop)
		_ = ln.Close()
	case err := <-serveErr:
		if err != nil {
			log.Errorf("serve: %v", err)
		}
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("metrics listener: %v", err)
	}
}
