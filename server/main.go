package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()

	if err := loadDotEnv(".env"); err != nil {
		klog.Warningf("reading .env: %v", err)
	}
	opts, err := parseOptions(flag.CommandLine, os.Args[1:], os.Getenv)
	if err != nil {
		klog.Exitf("parse flags: %v", err)
	}

	var db *DB
	if opts.DBPath != "" {
		db, err = OpenDB(opts.DBPath)
		if err != nil {
			klog.Exitf("open database %s: %v", opts.DBPath, err)
		}
		defer db.Close()
	}

	hub := NewHub(db, opts.JWTSecret)
	go hub.Run()

	mux := SetupRoutes(hub, opts.ClientDir, opts.PublicURL)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: opts.Addr, Handler: mux}

	go func() {
		klog.Infof("Server starting on %s", opts.Addr)
		klog.Infof("Serving client files from %s", opts.ClientDir)
		if db == nil {
			klog.Infof("Running without storage, preferences are not kept")
		}
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			klog.Exitf("ListenAndServe: %v", err)
		}
	}()

	<-stop
	klog.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		klog.Warningf("shutdown: %v", err)
		server.Close()
	}
	hub.sessions.StopAll()
}
