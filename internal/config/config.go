package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. ZINE_API_BASE_URL.
const EnvPrefix = "ZINE"

// Config is everything the reader needs at startup. Values merge in
// ascending precedence: built-in defaults, the config file, .env, then
// process environment.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Content ContentConfig `mapstructure:"content"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Log     LogConfig     `mapstructure:"log"`
}

// APIConfig locates and shapes talk to the content API.
type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gte=1,lte=10"`
}

// ContentConfig sets pagination page sizes.
type ContentConfig struct {
	BlockPageSize int `mapstructure:"block_page_size" validate:"gte=1,lte=100"`
	ListPageSize  int `mapstructure:"list_page_size" validate:"gte=1,lte=100"`
}

// CacheConfig sets the cache location and per-class lifetimes.
type CacheConfig struct {
	Dir               string        `mapstructure:"dir"`
	ArticleListTTL    time.Duration `mapstructure:"article_list_ttl" validate:"gt=0"`
	ArticleContentTTL time.Duration `mapstructure:"article_content_ttl" validate:"gt=0"`
	CategoriesTTL     time.Duration `mapstructure:"categories_ttl" validate:"gt=0"`
	RecentlyViewedTTL time.Duration `mapstructure:"recently_viewed_ttl" validate:"gt=0"`
}

// LogConfig controls diagnostic output. An empty file disables file logging.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	File  string `mapstructure:"file"`
}

type loader struct {
	configFile string
	envFile    string
}

// Option adjusts how Load finds its inputs.
type Option func(*loader)

// WithFile reads configuration from an explicit file instead of searching.
func WithFile(path string) Option {
	return func(l *loader) { l.configFile = path }
}

// WithEnvFile loads an explicit .env file instead of the conventional one.
func WithEnvFile(path string) Option {
	return func(l *loader) { l.envFile = path }
}

// Load assembles and validates the configuration.
func Load(options ...Option) (Config, error) {
	var l loader
	for _, option := range options {
		option(&l)
	}

	if err := loadEnvFile(l.envFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	registerDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// AutomaticEnv only surfaces keys viper already knows about, which the
	// defaults above guarantee for every field.
	v.AutomaticEnv()

	if err := readConfigFile(v, l.configFile); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func registerDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.max_attempts", 3)
	v.SetDefault("content.block_page_size", 10)
	v.SetDefault("content.list_page_size", 100)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.article_list_ttl", time.Hour)
	v.SetDefault("cache.article_content_ttl", 24*time.Hour)
	v.SetDefault("cache.categories_ttl", 24*time.Hour)
	v.SetDefault("cache.recently_viewed_ttl", 7*24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// loadEnvFile loads an explicit .env file, or the conventional ./.env when
// present. Only the explicit variant treats absence as an error.
func loadEnvFile(explicit string) error {
	if explicit != "" {
		if err := godotenv.Load(explicit); err != nil {
			return errors.Wrapf(err, "load env file %s", explicit)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return errors.Wrap(err, "load .env")
		}
	}
	return nil
}

// readConfigFile reads the explicit file, $ZINE_CONFIG, or the first
// conventional location that exists: ./zine.yml, then the user config dir.
// Deliberately named files must be readable; discovered ones must only exist.
func readConfigFile(v *viper.Viper, explicit string) error {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path == "" {
		path = discoverConfigFile()
		if path == "" {
			return nil
		}
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	return nil
}

func discoverConfigFile() string {
	candidates := []string{"zine.yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "zine", "config.yml"))
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func validate(cfg Config) error {
	checker := validator.New(validator.WithRequiredStructEnabled())
	err := checker.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		if first.Namespace() == "Config.API.BaseURL" && first.Tag() == "required" {
			return errors.New("api.base_url is required (set " + EnvPrefix + "_API_BASE_URL)")
		}
		return errors.Wrapf(err, "invalid config value for %s", first.Namespace())
	}
	return errors.Wrap(err, "validate config")
}
