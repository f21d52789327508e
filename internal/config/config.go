// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/treadlinehq/treadline-backend/internal/analyzers"
	"github.com/treadlinehq/treadline-backend/internal/engine"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Engine   engine.Config
	Analyzer analyzers.Config
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host                 string
	Port                 string
	User                 string
	Password             string
	DBName               string
	SSLMode              string
	MaxConcurrentQueries int64
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "treadline")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("DB_MAX_CONCURRENT_QUERIES", 10)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_TTL_SECONDS", 60)

		// Engine thresholds encode tuned store policy; overridable but the
		// defaults are the production values.
		def := engine.DefaultConfig()
		viper.SetDefault("ENGINE_RISK_WINDOW_DAYS", def.RiskWindowDays)
		viper.SetDefault("ENGINE_PRIOR_WINDOW_DAYS", def.PriorWindowDays)
		viper.SetDefault("ENGINE_OUTLOOK_DAYS", def.DefaultOutlookDays)
		viper.SetDefault("ENGINE_RESERVE_WINDOW_DAYS", def.ReserveWindowDays)
		viper.SetDefault("ENGINE_CUSHION_DAYS", def.CushionDays)
		viper.SetDefault("ENGINE_SHORT_WINDOW_DAYS", def.ShortWindowDays)
		viper.SetDefault("ENGINE_CONFIDENCE_SCALE", def.ConfidenceScale)
		viper.SetDefault("ENGINE_PRECEDENCE_FLOOR_DAYS", def.PrecedenceFloorDays)
		viper.SetDefault("ENGINE_HARD_FLOOR_DAYS", def.HardFloorDays)
		viper.SetDefault("ENGINE_MIN_SOURCE_UNITS", def.MinSourceUnits)
		viper.SetDefault("ENGINE_MIN_TRANSFER_QTY", def.MinTransferQty)
		viper.SetDefault("ENGINE_OVERSTOCK_SUPPLY_DAYS", def.OverstockSupplyDays)
		viper.SetDefault("ENGINE_OVERSTOCK_MIN_QTY", def.OverstockMinQty)
		viper.SetDefault("ENGINE_WORKERS", def.Workers)

		adef := analyzers.DefaultConfig()
		viper.SetDefault("ANALYZER_LOOKBACK_DAYS", adef.LookbackDays)
		viper.SetDefault("ANALYZER_HORIZON_DAYS", adef.HorizonDays)

		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:                 viper.GetString("DB_HOST"),
				Port:                 viper.GetString("DB_PORT"),
				User:                 viper.GetString("DB_USER"),
				Password:             viper.GetString("DB_PASSWORD"),
				DBName:               viper.GetString("DB_NAME"),
				SSLMode:              viper.GetString("DB_SSLMODE"),
				MaxConcurrentQueries: viper.GetInt64("DB_MAX_CONCURRENT_QUERIES"),
			},
			Cache: CacheConfig{
				Enabled:       viper.GetBool("CACHE_ENABLED"),
				RedisURL:      viper.GetString("REDIS_URL"),
				RedisHost:     viper.GetString("REDIS_HOST"),
				RedisPort:     viper.GetString("REDIS_PORT"),
				RedisPassword: viper.GetString("REDIS_PASSWORD"),
				RedisDB:       viper.GetInt("REDIS_DB"),
				TTLSeconds:    viper.GetInt("CACHE_TTL_SECONDS"),
			},
			Engine: engine.Config{
				RiskWindowDays:       viper.GetInt("ENGINE_RISK_WINDOW_DAYS"),
				PriorWindowDays:      viper.GetInt("ENGINE_PRIOR_WINDOW_DAYS"),
				DefaultOutlookDays:   viper.GetInt("ENGINE_OUTLOOK_DAYS"),
				ReserveWindowDays:    viper.GetInt("ENGINE_RESERVE_WINDOW_DAYS"),
				CushionDays:          viper.GetFloat64("ENGINE_CUSHION_DAYS"),
				ShortWindowDays:      viper.GetInt("ENGINE_SHORT_WINDOW_DAYS"),
				ConfidenceScale:      viper.GetFloat64("ENGINE_CONFIDENCE_SCALE"),
				PrecedenceFloorDays:  viper.GetFloat64("ENGINE_PRECEDENCE_FLOOR_DAYS"),
				HardFloorDays:        viper.GetFloat64("ENGINE_HARD_FLOOR_DAYS"),
				MinSourceUnits:       viper.GetInt("ENGINE_MIN_SOURCE_UNITS"),
				MinTransferQty:       viper.GetInt("ENGINE_MIN_TRANSFER_QTY"),
				OverstockSupplyDays:  viper.GetFloat64("ENGINE_OVERSTOCK_SUPPLY_DAYS"),
				OverstockMinQty:      viper.GetInt("ENGINE_OVERSTOCK_MIN_QTY"),
				IndefiniteSupplyDays: def.IndefiniteSupplyDays,
				Workers:              viper.GetInt("ENGINE_WORKERS"),
			},
			Analyzer: analyzers.Config{
				LookbackDays: viper.GetInt("ANALYZER_LOOKBACK_DAYS"),
				HorizonDays:  viper.GetInt("ANALYZER_HORIZON_DAYS"),
			},
		}
	})

	return instance
}
