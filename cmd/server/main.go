package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"

	"github.com/xtding233/dicesim/internal/config"
	"github.com/xtding233/dicesim/internal/transport/grpcapi"
	"github.com/xtding233/dicesim/internal/transport/httpapi"
)

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg, err := config.LoadServerEnv()
	if err != nil {
		log.Fatal(err)
	}

	loader := config.NewLoader(cfg.ConfigDir)
	if cfg.Watch {
		w, err := config.WatchLoader(loader)
		if err != nil {
			log.Printf("config watch disabled: %v", err)
		} else {
			defer w.Close()
		}
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.New(loader, httpapi.Limits{MaxRolls: cfg.MaxRolls, MaxTrials: cfg.MaxTrials}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	grpcSrv := grpc.NewServer()
	grpcapi.Register(grpcSrv, grpcapi.NewService(loader, cfg.MaxRolls, cfg.MaxTrials))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.GRPCAddr, err)
	}

	errc := make(chan error, 2)
	go func() {
		log.Printf("http listening on %s ...", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go func() {
		log.Printf("grpc listening on %s ...", cfg.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			errc <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case <-ctx.Done():
		log.Println("shutting down ...")
	case err := <-errc:
		log.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	grpcSrv.GracefulStop()
}
