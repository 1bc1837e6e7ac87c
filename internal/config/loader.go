package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the service configuration. Resolution order: config.yml
// (searched in standard locations), then a .env file, then process
// environment variables, which always win.
func Load() (*Config, error) {
	return LoadFrom("", "")
}

// LoadFrom loads configuration from explicit file paths. Empty paths fall
// back to the standard search locations.
func LoadFrom(configFile, envFile string) (*Config, error) {
	v := viper.New()

	if configFile == "" {
		configFile = findFirst(
			fmt.Sprintf("./cmd/%s/config.yml", ServiceName),
			"./config/config.yml",
			"./config.yml",
		)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	if envFile == "" {
		envFile = findFirst(fmt.Sprintf(".env.%s", ServiceName), ".env")
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetDefault("worker.enabled", true)
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// bindEnvKeys registers every key the Config struct can carry so that
// AutomaticEnv sees variables with no config-file counterpart.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"environment",
		"logging.level", "logging.format", "logging.output", "logging.no_color", "logging.caller",
		"observability.enabled", "observability.endpoint", "observability.insecure", "observability.sample_rate",
		"server.host", "server.port", "server.read_timeout", "server.write_timeout", "server.idle_timeout",
		"auth.api_key",
		"redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.dial_timeout",
		"queue.key", "queue.poll_timeout",
		"worker.enabled", "worker.concurrency",
		"pipeline.work_dir",
		"ytdlp.binary", "ytdlp.timeout", "ytdlp.min_duration_seconds",
		"whisper.url", "whisper.model", "whisper.download_root", "whisper.compute_type", "whisper.timeout",
		"webhook.timeout",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

func findFirst(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
