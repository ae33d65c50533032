// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Geocoder GeocoderConfig `yaml:"geocoder" mapstructure:"geocoder"`
	Engine   EngineConfig   `yaml:"engine" mapstructure:"engine"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the Postgres backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// GeocoderConfig configures the geocoding cascade.
type GeocoderConfig struct {
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	GoogleAPIKey  string  `yaml:"google_api_key" mapstructure:"google_api_key"`
	RateLimitRPS  float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	MaxAttempts   int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CacheEnabled  bool    `yaml:"cache_enabled" mapstructure:"cache_enabled"`
	CacheTTLDays  int     `yaml:"cache_ttl_days" mapstructure:"cache_ttl_days"`
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
}

// EngineConfig holds every tunable of the assignment engine. The defaults
// reproduce production behavior; tests construct variants to probe the
// scoring formula without touching the engine code.
type EngineConfig struct {
	// AreaKeywords mark a raw location description as a named area when any
	// of them appears as a case-insensitive substring.
	AreaKeywords []string `yaml:"area_keywords" mapstructure:"area_keywords"`

	// MetroTradeAreaCap bounds how many trade areas a metro-tier resolution
	// may return, ordered by centroid distance.
	MetroTradeAreaCap int `yaml:"metro_trade_area_cap" mapstructure:"metro_trade_area_cap"`

	// MetroMinImpactScore filters out metro-tier impacts at or below this
	// value; metro events are too diffuse to record negligible impacts.
	MetroMinImpactScore float64 `yaml:"metro_min_impact_score" mapstructure:"metro_min_impact_score"`

	// DefaultExistingUnits substitutes for a missing stats snapshot when
	// computing supply pressure.
	DefaultExistingUnits int `yaml:"default_existing_units" mapstructure:"default_existing_units"`

	// Factor weights; they must sum to 1.0.
	ProximityWeight  float64 `yaml:"proximity_weight" mapstructure:"proximity_weight"`
	SectorWeight     float64 `yaml:"sector_weight" mapstructure:"sector_weight"`
	AbsorptionWeight float64 `yaml:"absorption_weight" mapstructure:"absorption_weight"`
	TemporalWeight   float64 `yaml:"temporal_weight" mapstructure:"temporal_weight"`

	// Occupancy thresholds that amplify or dampen absorption.
	TightMarketOccupancy float64 `yaml:"tight_market_occupancy" mapstructure:"tight_market_occupancy"`
	SoftMarketOccupancy  float64 `yaml:"soft_market_occupancy" mapstructure:"soft_market_occupancy"`
}

// WeightSum returns the sum of the four factor weights.
func (c EngineConfig) WeightSum() float64 {
	return c.ProximityWeight + c.SectorWeight + c.AbsorptionWeight + c.TemporalWeight
}

// BatchConfig configures batch assignment.
type BatchConfig struct {
	MaxConcurrentEvents int `yaml:"max_concurrent_events" mapstructure:"max_concurrent_events"`
	Limit               int `yaml:"limit" mapstructure:"limit"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultEngineConfig returns the production engine tuning.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		AreaKeywords: []string{
			"midtown", "downtown", "uptown", "district", "neighborhood",
			"corridor", "quarter", "village", "heights", "park",
		},
		MetroTradeAreaCap:    50,
		MetroMinImpactScore:  5,
		DefaultExistingUnits: 10000,
		ProximityWeight:      0.30,
		SectorWeight:         0.30,
		AbsorptionWeight:     0.25,
		TemporalWeight:       0.15,
		TightMarketOccupancy: 95,
		SoftMarketOccupancy:  85,
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("IMPACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys need a default registered for AutomaticEnv to surface
	// them through Unmarshal, so secrets default to empty.
	v.SetDefault("store.database_url", "")
	v.SetDefault("geocoder.google_api_key", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_events", 4)
	v.SetDefault("batch.limit", 0)
	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.user_agent", "impact-engine/1.0 (research@sellsadvisors.com)")
	v.SetDefault("geocoder.rate_limit_rps", 1)
	v.SetDefault("geocoder.max_attempts", 3)
	v.SetDefault("geocoder.timeout_secs", 15)
	v.SetDefault("geocoder.cache_enabled", true)
	v.SetDefault("geocoder.cache_ttl_days", 30)
	v.SetDefault("geocoder.min_confidence", 0)

	def := DefaultEngineConfig()
	v.SetDefault("engine.area_keywords", def.AreaKeywords)
	v.SetDefault("engine.metro_trade_area_cap", def.MetroTradeAreaCap)
	v.SetDefault("engine.metro_min_impact_score", def.MetroMinImpactScore)
	v.SetDefault("engine.default_existing_units", def.DefaultExistingUnits)
	v.SetDefault("engine.proximity_weight", def.ProximityWeight)
	v.SetDefault("engine.sector_weight", def.SectorWeight)
	v.SetDefault("engine.absorption_weight", def.AbsorptionWeight)
	v.SetDefault("engine.temporal_weight", def.TemporalWeight)
	v.SetDefault("engine.tight_market_occupancy", def.TightMarketOccupancy)
	v.SetDefault("engine.soft_market_occupancy", def.SoftMarketOccupancy)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
