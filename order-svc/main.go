package main

import (
	"fmt"
	"io"
	"log"
	"path/filepath"

	"flash-delivery/config"
	httpapi "flash-delivery/order-svc/internal/api/http"
	"flash-delivery/order-svc/internal/metrics"
	"flash-delivery/order-svc/internal/service"
	"flash-delivery/order-svc/internal/storage"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	catalog, err := service.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		log.Fatal("Failed to load catalog:", err)
	}

	repo, closeRepo, err := buildRepository(cfg)
	if err != nil {
		log.Fatal("Failed to open order store:", err)
	}
	defer closeRepo.Close()

	var (
		cache     service.IdempotencyCache
		stats     service.StatsReader
		publisher service.OrderPublisher
	)
	if cfg.RedisAddr != "" {
		rdb := config.MustInitRedis(cfg.RedisAddr)
		defer rdb.Close()
		cache, stats = redisCollaborators(rdb, cfg)
	}
	if cfg.KafkaBroker != "" {
		writer := config.NewKafkaWriter(cfg.KafkaBroker, cfg.OrdersTopic)
		defer writer.Close()
		publisher = storage.NewKafkaPublisher(writer)
	}

	reg := metrics.NewRegistry()
	qr := service.TrackingQRGenerator{BaseURL: cfg.PublicBaseURL}
	orders := service.NewOrderService(repo, catalog, cache, publisher, reg, qr)
	auth := service.NewStaticTokenAuth(cfg.AdminPassword, cfg.AdminTokenSalt)

	handler := httpapi.NewHandler(orders, catalog, auth, stats)
	httpapi.StartServer(":"+cfg.Port, httpapi.NewRouter(handler, reg))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// buildRepository opens the order store selected by STORE_DRIVER.
func buildRepository(cfg config.Config) (service.OrderRepository, io.Closer, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverFile:
		repo, err := storage.NewFileRepository(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Using file order store at %s", repo.Path())
		return repo, nopCloser{}, nil
	case config.StoreDriverPebble:
		dir := filepath.Join(cfg.DataDir, "pebble")
		repo, err := storage.NewPebbleRepository(dir)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Using pebble order store at %s", dir)
		return repo, repo, nil
	case config.StoreDriverPostgres:
		db := config.MustInitPostgres()
		repo := storage.NewPostgresRepository(db)
		if err := repo.EnsureSchema(); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Printf("Using postgres order store")
		return repo, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func redisCollaborators(rdb *redis.Client, cfg config.Config) (service.IdempotencyCache, service.StatsReader) {
	return storage.NewRedisIdempotencyCache(rdb, cfg.IdempotencyTTL), storage.NewRedisStats(rdb)
}
