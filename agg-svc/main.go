package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"flash-delivery/agg-svc/internal/service"
	"flash-delivery/agg-svc/internal/storage"
	"flash-delivery/config"
)

func main() {
	cfg := config.Load()
	if cfg.KafkaBroker == "" || cfg.RedisAddr == "" {
		log.Fatal("[agg-svc] KAFKA_BROKER and REDIS_HOST are required")
	}

	rdb := config.MustInitRedis(cfg.RedisAddr)
	defer rdb.Close()

	reader := config.NewKafkaReader(cfg.KafkaBroker, cfg.OrdersTopic, cfg.ConsumerGroup)
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := service.NewConsumer(reader, storage.NewStore(rdb, cfg.StatsTTL))
	log.Printf("[agg-svc] consuming %s from %s as %s", cfg.OrdersTopic, cfg.KafkaBroker, cfg.ConsumerGroup)
	consumer.Start(ctx)
}
