package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/kimyounil1/honey-pot-sub000/internal/config"
	"github.com/kimyounil1/honey-pot-sub000/internal/handler"
	"github.com/kimyounil1/honey-pot-sub000/internal/logger"
	"github.com/kimyounil1/honey-pot-sub000/internal/middleware"
	"github.com/kimyounil1/honey-pot-sub000/internal/service"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log, logger.Gateway)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var counter middleware.Counter
	if cfg.RateLimit.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.Password,
			DB:       cfg.RateLimit.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("ratelimit.redis_unreachable", "addr", cfg.RateLimit.RedisAddr, "err", err)
		}
		cancel()
		counter = rdb
		logger.Info("ratelimit enabled", "addr", cfg.RateLimit.RedisAddr, "qps", cfg.RateLimit.QPS)
	}

	upstream := service.NewUpstream(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout())
	r := handler.NewRouter(cfg, upstream, counter)

	logger.Info("server starting", "addr", cfg.Addr(), "backend", cfg.Backend.BaseURL, "env", cfg.Env)
	if err := r.Run(cfg.Addr()); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
