// Package main API Server 入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"harmonic-server/internal/apiserver/payment"
	"harmonic-server/internal/apiserver/server"
	"harmonic-server/internal/config"
	"harmonic-server/internal/shared/cache"
	rediscache "harmonic-server/internal/shared/cache/redis"
	"harmonic-server/internal/shared/storage/mongostore"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换 YAML）
	cfg := config.Load()

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	if !cfg.Auth.Enabled() {
		log.Println("WARNING: ACCESS_TOKEN_SECRET is empty, authentication disabled")
	}

	// 初始化 MongoDB（持久化业务数据）
	store, err := mongostore.NewStore(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()
	log.Println("Connected to MongoDB")

	// 初始化课程目录缓存（Redis 可选，缺省时直查存储）
	var catalog cache.CatalogCache = cache.NewNoOpCache()
	if cfg.RedisURL != "" {
		redisCache, err := rediscache.NewStoreFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("WARNING: Redis unavailable, catalog cache disabled: %v", err)
		} else {
			catalog = redisCache
			defer redisCache.Close()
			log.Println("Connected to Redis")
		}
	}

	// 初始化支付适配器
	if cfg.StripeSecretKey == "" {
		log.Println("WARNING: STRIPE_SECRET_KEY is empty, payment intents will fail")
	}
	intents := payment.NewStripeCreator(cfg.StripeSecretKey)

	h := server.NewHandler(store, catalog, intents, cfg.Auth)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
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
