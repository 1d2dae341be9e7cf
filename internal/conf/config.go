package conf

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config application configuration
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Ledger        LedgerConfig        `mapstructure:"ledger"`
	Tenant        TenantConfig        `mapstructure:"tenant"`
	Alerts        AlertsConfig        `mapstructure:"alerts"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ServerConfig HTTP server configuration
type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	MetricsPort     int           `mapstructure:"metrics_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig postgres configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DBName          string        `mapstructure:"dbname"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig redis configuration
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig kafka producer configuration
type KafkaConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Brokers    []string `mapstructure:"brokers"`
	AlertTopic string   `mapstructure:"alert_topic"`
	RetryMax   int      `mapstructure:"retry_max"`
}

// LedgerConfig ledger transaction tuning
type LedgerConfig struct {
	// LockTimeout bounds how long a mutation waits for a row lock before
	// giving up with a conflict error.
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// TenantConfig tenant resolution configuration
type TenantConfig struct {
	BaseDomain      string        `mapstructure:"base_domain"`
	ResolveCacheTTL time.Duration `mapstructure:"resolve_cache_ttl"`
}

// AlertsConfig threshold evaluation worker configuration
type AlertsConfig struct {
	EvalInterval          time.Duration `mapstructure:"eval_interval"`
	TenantConcurrency     int           `mapstructure:"tenant_concurrency"`
	ForecastMinConfidence float64       `mapstructure:"forecast_min_confidence"`
}

// ObservabilityConfig logging and metrics configuration
type ObservabilityConfig struct {
	ServiceName   string `mapstructure:"service_name"`
	Environment   string `mapstructure:"environment"`
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

// Load reads configuration from file and environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("tracktok")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	setDefaults(v)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Secrets come from the environment, never from the config file.
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.Database.Password = password
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Redis.Password = password
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.migrations_path", "migrations")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.alert_topic", "tracktok.alerts")
	v.SetDefault("kafka.retry_max", 3)

	v.SetDefault("ledger.lock_timeout", "5s")

	v.SetDefault("tenant.base_domain", "tracktok.io")
	v.SetDefault("tenant.resolve_cache_ttl", "5m")

	v.SetDefault("alerts.eval_interval", "15m")
	v.SetDefault("alerts.tenant_concurrency", 8)
	v.SetDefault("alerts.forecast_min_confidence", 90)

	v.SetDefault("observability.service_name", "tracktok")
	v.SetDefault("observability.environment", "development")
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.log_format", "json")
	v.SetDefault("observability.enable_metrics", true)
}
