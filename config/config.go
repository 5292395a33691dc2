package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Engine     EngineConfig     `yaml:"engine"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Import     ImportConfig     `yaml:"import"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the alert push worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
	// DispatchInterval pushes the current alerts periodically; zero disables it.
	DispatchInterval time.Duration `yaml:"dispatch_interval"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
	MaxUploadMB     int     `yaml:"max_upload_mb"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
}

// EngineConfig tunes the scheduling and reconciliation engine.
type EngineConfig struct {
	ToleranceDays     int `yaml:"tolerance_days"`
	AlertWindowDays   int `yaml:"alert_window_days"`
	DefaultPageSize   int `yaml:"default_page_size"`
	InsertBatchSize   int `yaml:"insert_batch_size"`
	MaxPlanningYearUp int `yaml:"max_planning_year_ahead"`
}

// CatalogConfig extends the built-in operation matcher.
type CatalogConfig struct {
	// Synonyms maps a space separated phrase to an operation code.
	Synonyms map[string]string `yaml:"synonyms"`
}

// ImportConfig describes how workbook sheets map onto reference tables.
type ImportConfig struct {
	Sheets     SheetNames       `yaml:"sheets"`
	RuleSchema RuleSchemaConfig `yaml:"rule_schema"`
}

// SheetNames names the workbook sheet holding each table.
type SheetNames struct {
	Equipment     string `yaml:"equipment"`
	Rules         string `yaml:"rules"`
	CategoryRules string `yaml:"category_rules"`
	Curative      string `yaml:"curative"`
	OilChanges    string `yaml:"oil_changes"`
	Consolidated  string `yaml:"consolidated"`
}

// RuleSchemaConfig names the interval rule columns explicitly. When
// Operation is empty the importer discovers the columns from the headers.
type RuleSchemaConfig struct {
	Operation   string         `yaml:"operation"`
	Intervals   map[int]string `yaml:"intervals"`
	Control     string         `yaml:"control"`
	Cleaning    string         `yaml:"cleaning"`
	Replacement string         `yaml:"replacement"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills every unset value with its default.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 32
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Engine.ToleranceDays <= 0 {
		cfg.Engine.ToleranceDays = 30
	}
	if cfg.Engine.AlertWindowDays <= 0 {
		cfg.Engine.AlertWindowDays = 30
	}
	if cfg.Engine.DefaultPageSize <= 0 {
		cfg.Engine.DefaultPageSize = 1
	}
	if cfg.Engine.InsertBatchSize <= 0 {
		cfg.Engine.InsertBatchSize = 500
	}
	if cfg.Engine.MaxPlanningYearUp <= 0 {
		cfg.Engine.MaxPlanningYearUp = 10
	}

	s := &cfg.Import.Sheets
	if s.Equipment == "" {
		s.Equipment = "matrice"
	}
	if s.Rules == "" {
		s.Rules = "Param"
	}
	if s.CategoryRules == "" {
		s.CategoryRules = "category_entretiens"
	}
	if s.Curative == "" {
		s.Curative = "suivi_curatif"
	}
	if s.OilChanges == "" {
		s.OilChanges = "vidange"
	}
	if s.Consolidated == "" {
		s.Consolidated = "consolide"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}
