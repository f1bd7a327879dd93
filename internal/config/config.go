// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/contactmesh/geodetect/internal/cache"
	"github.com/contactmesh/geodetect/internal/cluster"
	"github.com/contactmesh/geodetect/internal/score"
	"github.com/contactmesh/geodetect/internal/suggest"
)

// Config holds the full application configuration.
type Config struct {
	Places  PlacesConfig   `yaml:"places" mapstructure:"places"`
	Detect  DetectConfig   `yaml:"detect" mapstructure:"detect"`
	Score   score.Config   `yaml:"score" mapstructure:"score"`
	Event   EventConfig    `yaml:"event" mapstructure:"event"`
	Cluster cluster.Config `yaml:"cluster" mapstructure:"cluster"`
	Suggest suggest.Config `yaml:"suggest" mapstructure:"suggest"`
	Cache   cache.Config   `yaml:"cache" mapstructure:"cache"`
	Server  ServerConfig   `yaml:"server" mapstructure:"server"`
	Log     LogConfig      `yaml:"log" mapstructure:"log"`
}

// PlacesConfig holds the Places API credentials and endpoint.
type PlacesConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// DetectConfig configures detection run orchestration.
type DetectConfig struct {
	DefaultRadiusMeters float64 `yaml:"default_radius" mapstructure:"default_radius"`
	MaxRadiusMeters     float64 `yaml:"max_radius" mapstructure:"max_radius"`
	MaxConcurrent       int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	SearchesPerSecond   float64 `yaml:"searches_per_second" mapstructure:"searches_per_second"`
	MaxResultsPerSearch int     `yaml:"max_results_per_search" mapstructure:"max_results_per_search"`
}

// EventConfig holds the per-method event acceptance floors.
type EventConfig struct {
	NearbyThreshold float64 `yaml:"nearby_threshold" mapstructure:"nearby_threshold"`
	TextThreshold   float64 `yaml:"text_threshold" mapstructure:"text_threshold"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEODETECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)

	// An explicit default makes the key visible to Unmarshal when it is set
	// only through the environment.
	v.SetDefault("places.api_key", "")
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")

	v.SetDefault("detect.default_radius", 500)
	v.SetDefault("detect.max_radius", 5000)
	v.SetDefault("detect.max_concurrent", 5)
	v.SetDefault("detect.searches_per_second", 10)
	v.SetDefault("detect.max_results_per_search", 20)

	scoreCfg := score.DefaultConfig()
	v.SetDefault("score.event_venue_types", scoreCfg.EventVenueTypes)
	v.SetDefault("score.name_keywords", scoreCfg.NameKeywords)

	v.SetDefault("event.nearby_threshold", 0.3)
	v.SetDefault("event.text_threshold", 0.4)

	clusterCfg := cluster.DefaultConfig()
	v.SetDefault("cluster.min_similarity", clusterCfg.MinSimilarity)
	v.SetDefault("cluster.max_intra_cluster_distance", clusterCfg.MaxIntraClusterDistance)
	v.SetDefault("cluster.split_radius_cap", clusterCfg.SplitRadiusCapMeters)
	v.SetDefault("cluster.majority_radius", clusterCfg.MajorityRadiusMeters)
	v.SetDefault("cluster.category_radii", clusterCfg.CategoryRadii)
	v.SetDefault("cluster.city_radius_caps", clusterCfg.CityRadiusCaps)
	v.SetDefault("cluster.incompatible_types", clusterCfg.IncompatibleTypes)

	suggestCfg := suggest.DefaultConfig()
	v.SetDefault("suggest.max_suggestions", suggestCfg.MaxSuggestions)
	v.SetDefault("suggest.min_company_contacts", suggestCfg.MinCompanyContacts)
	v.SetDefault("suggest.min_domain_contacts", suggestCfg.MinDomainContacts)
	v.SetDefault("suggest.min_day_contacts", suggestCfg.MinDayContacts)
	v.SetDefault("suggest.min_hour_contacts", suggestCfg.MinHourContacts)
	v.SetDefault("suggest.location_radius", suggestCfg.LocationRadiusMeters)
	v.SetDefault("suggest.context_radius", suggestCfg.ContextRadiusMeters)
	v.SetDefault("suggest.free_mail_providers", suggestCfg.FreeMailProviders)
	v.SetDefault("suggest.high_value_industries", suggestCfg.HighValueIndustries)

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.path", "geodetect-cache.db")
	v.SetDefault("cache.ttl", "30m")
	v.SetDefault("cache.max_entries", 512)
}

// Validate checks the loaded configuration for defects that should fail at
// startup rather than per request.
func (c *Config) Validate() error {
	var errs []string

	if c.Detect.DefaultRadiusMeters <= 0 {
		errs = append(errs, "detect.default_radius must be > 0")
	}
	if c.Detect.MaxRadiusMeters < c.Detect.DefaultRadiusMeters {
		errs = append(errs, "detect.max_radius must be >= detect.default_radius")
	}
	if c.Detect.MaxConcurrent <= 0 {
		errs = append(errs, "detect.max_concurrent must be > 0")
	}
	if c.Detect.SearchesPerSecond <= 0 {
		errs = append(errs, "detect.searches_per_second must be > 0")
	}
	if c.Event.NearbyThreshold < 0 || c.Event.NearbyThreshold >= 1 {
		errs = append(errs, "event.nearby_threshold must be in [0,1)")
	}
	if c.Event.TextThreshold < 0 || c.Event.TextThreshold >= 1 {
		errs = append(errs, "event.text_threshold must be in [0,1)")
	}

	if err := c.Cluster.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Suggest.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
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
