package config

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

const (
	StoreDriverFile     = "file"
	StoreDriverPebble   = "pebble"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	Port           string
	StoreDriver    string
	DataDir        string
	CatalogFile    string
	AdminPassword  string
	AdminTokenSalt string
	PublicBaseURL  string
	RedisAddr      string
	IdempotencyTTL time.Duration
	KafkaBroker    string
	OrdersTopic    string
	ConsumerGroup  string
	StatsTTL       time.Duration
	GatewayPort    string
	OrderSvcURL    string
	StaticDir      string
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	cfg := Config{
		Port:           getEnv("PORT", "8000"),
		StoreDriver:    getEnv("STORE_DRIVER", StoreDriverFile),
		DataDir:        getEnv("DATA_DIR", "./storage"),
		CatalogFile:    getEnv("CATALOG_FILE", ""),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "changeme123"),
		AdminTokenSalt: getEnv("ADMIN_TOKEN_SALT", "flashdelivery"),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		KafkaBroker:    getEnv("KAFKA_BROKER", ""),
		OrdersTopic:    getEnv("KAFKA_ORDERS_TOPIC", "orders"),
		ConsumerGroup:  getEnv("KAFKA_CONSUMER_GROUP", "agg-svc-consumer"),
		StatsTTL:       getDuration("STATS_TTL", 30*24*time.Hour),
		GatewayPort:    getEnv("GATEWAY_PORT", "8080"),
		OrderSvcURL:    getEnv("ORDER_SVC_URL", "http://localhost:8000"),
		StaticDir:      getEnv("STATIC_DIR", "./web/dist"),
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		cfg.RedisAddr = host + ":" + getEnv("REDIS_PORT", "6379")
	}
	return cfg
}

func MustInitPostgres() *sql.DB {
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "flashdelivery")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := os.Getenv("DB_PASSWORD")

	connStr := "host=" + dbHost + " port=" + dbPort + " user=" + dbUser +
		" password=" + dbPassword + " dbname=" + dbName + " sslmode=disable"

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis(addr string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func NewKafkaReader(broker, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{broker},
		Topic:   topic,
		GroupID: groupID,
	})
}

func NewKafkaWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("config: invalid %s=%q, using %s", key, raw, defaultValue)
	return defaultValue
}
