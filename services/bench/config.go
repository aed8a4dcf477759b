package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config parametriza a carga gerada contra o serviço de estoque
type Config struct {
	TargetURL    string
	Username     string
	Password     string
	Workers      int
	Operations   int
	InitialStock int
	MaxQuantity  int
	Timeout      time.Duration
	Tracing      TracingConfig
}

// TracingConfig liga a exportação dos spans do benchmark
type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
}

// LoadConfig lê a configuração do benchmark das variáveis de ambiente
func LoadConfig() (Config, error) {
	workers, err := getEnvInt("BENCH_WORKERS", 10)
	if err != nil {
		return Config{}, err
	}
	operations, err := getEnvInt("BENCH_OPERATIONS", 200)
	if err != nil {
		return Config{}, err
	}
	initialStock, err := getEnvInt("BENCH_INITIAL_STOCK", 50)
	if err != nil {
		return Config{}, err
	}
	maxQuantity, err := getEnvInt("BENCH_MAX_QUANTITY", 5)
	if err != nil {
		return Config{}, err
	}

	return Config{
		TargetURL:    getEnv("BENCH_TARGET_URL", "http://localhost:8080"),
		Username:     getEnv("ADMIN_USERNAME", "admin"),
		Password:     getEnv("ADMIN_PASSWORD", "stock2025"),
		Workers:      workers,
		Operations:   operations,
		InitialStock: initialStock,
		MaxQuantity:  maxQuantity,
		Timeout:      10 * time.Second,
		Tracing: TracingConfig{
			Enabled:      getEnvBool("BENCH_OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return parsed, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
