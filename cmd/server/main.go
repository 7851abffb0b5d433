package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/youruser/swuproxy/internal/api"
	"github.com/youruser/swuproxy/internal/app"
	"github.com/youruser/swuproxy/internal/config"
	"github.com/youruser/swuproxy/internal/deck"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		app.NewLogger(config.DefaultConfig(), "[swuproxy] ").Fatal("Failed to load configuration: %v", err)
	}

	log := app.NewLogger(cfg, "[swuproxy] ")
	a := app.New(cfg, log)

	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	api.RegisterRoutes(r, api.NewHandler(a.Pipeline, a.Resolver, api.Options{
		DeckPageBase: cfg.SWUDB.DeckPageBase,
		Alphabet:     deck.Alphabet(cfg.Deck.IDAlphabet),
		Limiter:      api.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst),
	}, log))

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server on http://%s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: %v", err)
	}
	log.Info("Server stopped")
}
