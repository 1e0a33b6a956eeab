package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/cache"
	intconfig "github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/config"
	router "github.com/alsahsbsajid/ProductionAppFleetSync-sub000/internal/http"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	intconfig.ConnectDB(env.DBDSN)
	defer intconfig.CloseDB()

	// Redis is optional; the cache degrades to local-only without it.
	var remote cache.RemoteTier
	if env.RedisAddr != "" {
		tier := cache.NewRedisTier(env.RedisAddr)
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := tier.Ping(pingCtx); err != nil {
			log.Printf("warning: redis unavailable, running cache local-only: %v", err)
		} else {
			remote = tier
			defer tier.Close()
		}
		cancelPing()
	}
	appCache := cache.New(remote)

	r := router.NewRouter(env, appCache)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly.")
}
