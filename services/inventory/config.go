package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// SupplierDeletePolicy define o que acontece ao excluir um fornecedor ainda referenciado
type SupplierDeletePolicy string

const (
	SupplierDeletePermissive SupplierDeletePolicy = "permissive"
	SupplierDeleteRestrict   SupplierDeletePolicy = "restrict"
)

// Config agrega toda a configuração do serviço, lida do ambiente em main
type Config struct {
	Port        string
	ServiceName string
	Database    DatabaseConfig
	Telemetry   TelemetryConfig
	Auth        AuthConfig
	Ledger      LedgerConfig
	Catalog     CatalogConfig
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	MaxConns        int32
	ConnectAttempts int
	RunMigrations   bool
}

// URL monta o DSN no formato URL usado pelo pgxpool
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// KeywordDSN monta o DSN no formato chave=valor usado pelo lib/pq
func (c DatabaseConfig) KeywordDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name,
	)
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
}

type AuthConfig struct {
	Username string
	Password string
	Token    string
}

type LedgerConfig struct {
	// StrictReferences faz compras e vendas verificarem a existência de produto e fornecedor
	StrictReferences bool
}

type CatalogConfig struct {
	SupplierDeletePolicy SupplierDeletePolicy
}

// LoadConfig lê a configuração das variáveis de ambiente
func LoadConfig() (Config, error) {
	maxConns, err := strconv.Atoi(getEnv("DATABASE_MAX_CONNS", "10"))
	if err != nil || maxConns <= 0 {
		return Config{}, fmt.Errorf("invalid DATABASE_MAX_CONNS: %q", os.Getenv("DATABASE_MAX_CONNS"))
	}

	policy := SupplierDeletePolicy(strings.ToLower(getEnv("SUPPLIER_DELETE_POLICY", string(SupplierDeletePermissive))))
	if policy != SupplierDeletePermissive && policy != SupplierDeleteRestrict {
		return Config{}, fmt.Errorf("invalid SUPPLIER_DELETE_POLICY: %q", policy)
	}

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		ServiceName: getEnv("SERVICE_NAME", "stock-service"),
		Database: DatabaseConfig{
			Host:            getEnv("DATABASE_HOST", "localhost"),
			Port:            getEnv("DATABASE_PORT", "5432"),
			User:            getEnv("DATABASE_USER", "root"),
			Password:        getEnv("DATABASE_PASSWORD", "pass"),
			Name:            getEnv("DATABASE_NAME", "gestion_stock"),
			MaxConns:        int32(maxConns),
			ConnectAttempts: 30,
			RunMigrations:   getEnvBool("RUN_MIGRATIONS", true),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getEnvBool("OTEL_ENABLED", true),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Auth: AuthConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", "stock2025"),
			Token:    getEnv("AUTH_TOKEN", "votre_token_jwt_ici"),
		},
		Ledger: LedgerConfig{
			StrictReferences: getEnvBool("STRICT_REFERENCES", false),
		},
		Catalog: CatalogConfig{
			SupplierDeletePolicy: policy,
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
