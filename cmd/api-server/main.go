// Package main API Server 入口
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"afro-class/internal/apiserver/auth"
	"afro-class/internal/apiserver/avatar"
	"afro-class/internal/apiserver/server"
	"afro-class/internal/config"
	"afro-class/internal/shared/infra"
	"afro-class/pkg/logging"
)

func main() {
	configDir := flag.String("config", "", "directory containing {env}.yaml")
	flag.Parse()
	if *configDir != "" {
		config.SetConfigDir(*configDir)
	}

	// 加载配置（.env.{env} + {env}.yaml + 环境变量）
	cfg := config.Load()

	logger := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Component: "api-server",
	})
	slog.SetDefault(logger.Logger)

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	authCfg, err := auth.NewConfig(cfg.Auth, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Invalid auth config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	deps, err := infra.New(ctx, cfg)
	if err != nil {
		cancel()
		log.Fatalf("Failed to initialize infrastructure: %v", err)
	}
	defer deps.Close()

	// 默认头像记录
	if err := avatar.EnsureDefault(ctx, deps.Storage); err != nil {
		cancel()
		log.Fatalf("Failed to ensure default avatar: %v", err)
	}
	cancel()

	h := server.NewHandler(deps.Storage, deps.EventBus, authCfg)
	h.SetLogger(logger)
	h.SetCORSOrigins(cfg.CORSOrigins)
	if deps.Objects != nil {
		h.SetObjectStore(deps.Objects)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     newServerErrorLog(logger),
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
