package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultHostname is the bind host used when a service's hostname variable is unset.
const DefaultHostname = "localhost"

// Config captures the settings shared by the fetch, prepare and estimate services.
type Config struct {
	Services   ServicesConfig   `yaml:"services"`
	Server     ServerConfig     `yaml:"server"`
	TLS        TLSConfig        `yaml:"tls"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
	Models     ModelsConfig     `yaml:"models"`
	Cache      CacheConfig      `yaml:"cache"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServicesConfig holds one listener definition per pipeline stage.
type ServicesConfig struct {
	Fetch    ServiceConfig `yaml:"fetch"`
	Prepare  ServiceConfig `yaml:"prepare"`
	Estimate ServiceConfig `yaml:"estimate"`
}

// ServiceConfig describes where a stage listens and which metrics job it reports under.
type ServiceConfig struct {
	Port           int    `yaml:"port"`
	HostnameEnv    string `yaml:"hostnameEnv"`
	Job            string `yaml:"job"`
	MetricsAddress string `yaml:"metricsAddress"`
}

// ServerConfig controls gRPC listener behaviour common to all stages.
type ServerConfig struct {
	Workers         int           `yaml:"workers"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// TLSConfig points at the PEM material used for mutual TLS.
type TLSConfig struct {
	Enabled    bool   `yaml:"enabled"`
	CertFile   string `yaml:"certFile"`
	KeyFile    string `yaml:"keyFile"`
	CAFile     string `yaml:"caFile"`
	ClientCert string `yaml:"clientCertFile"`
	ClientKey  string `yaml:"clientKeyFile"`
	ServerName string `yaml:"serverName"`
}

// PrometheusConfig locates the metrics backend query API and push gateway.
type PrometheusConfig struct {
	QueryURL    string        `yaml:"queryURL"`
	PushURL     string        `yaml:"pushURL"`
	SeedTimeout time.Duration `yaml:"seedTimeout"`
	PushTimeout time.Duration `yaml:"pushTimeout"`
}

// ModelsConfig maps model families onto artifact files.
type ModelsConfig struct {
	OpenWaterPath string `yaml:"openWaterPath"`
	IcePath       string `yaml:"icePath"`
}

// CacheConfig controls the optional Redis-backed artifact byte cache.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	TLS          bool          `yaml:"tls"`
	ArtifactTTL  time.Duration `yaml:"artifactTTL"`
}

// OutputConfig controls the optional spreadsheet emit after an estimate.
type OutputConfig struct {
	EmitPath string `yaml:"emitPath"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("POWER_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Address resolves host:port for the service. The host comes from the environment
// variable named by HostnameEnv and falls back to DefaultHostname.
func (s ServiceConfig) Address() string {
	host := ""
	if s.HostnameEnv != "" {
		host = strings.TrimSpace(os.Getenv(s.HostnameEnv))
	}
	if host == "" {
		host = DefaultHostname
	}
	return net.JoinHostPort(host, strconv.Itoa(s.Port))
}

func (c Config) validate() error {
	for name, svc := range map[string]ServiceConfig{
		"fetch":    c.Services.Fetch,
		"prepare":  c.Services.Prepare,
		"estimate": c.Services.Estimate,
	} {
		if svc.Port <= 0 || svc.Port > 65535 {
			return fmt.Errorf("services.%s.port %d out of range", name, svc.Port)
		}
		if strings.TrimSpace(svc.Job) == "" {
			return fmt.Errorf("services.%s.job is required", name)
		}
	}
	if c.Server.Workers <= 0 {
		return fmt.Errorf("server.workers must be positive, got %d", c.Server.Workers)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Services: ServicesConfig{
			Fetch: ServiceConfig{
				Port:           50051,
				HostnameEnv:    "FETCH_HOSTNAME",
				Job:            "fetchDataService",
				MetricsAddress: ":2112",
			},
			Prepare: ServiceConfig{
				Port:           50052,
				HostnameEnv:    "PREPARE_HOSTNAME",
				Job:            "prepareDataService",
				MetricsAddress: ":2113",
			},
			Estimate: ServiceConfig{
				Port:           50053,
				HostnameEnv:    "ESTIMATE_HOSTNAME",
				Job:            "estimateService",
				MetricsAddress: ":2114",
			},
		},
		Server: ServerConfig{
			Workers:         10,
			GracefulTimeout: 10 * time.Second,
		},
		TLS: TLSConfig{
			Enabled:    true,
			CertFile:   "certification/server-cert.pem",
			KeyFile:    "certification/server-key.pem",
			CAFile:     "certification/ca-cert.pem",
			ClientCert: "certification/client-cert.pem",
			ClientKey:  "certification/client-key.pem",
		},
		Prometheus: PrometheusConfig{
			QueryURL:    "http://localhost:9090",
			PushURL:     "http://localhost:9091",
			SeedTimeout: time.Second,
			PushTimeout: 500 * time.Millisecond,
		},
		Models: ModelsConfig{
			OpenWaterPath: "models/open_water.json",
			IcePath:       "models/ice.json",
		},
		Cache: CacheConfig{
			Enabled:      false,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   2,
			ArtifactTTL:  30 * time.Minute,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
	}
}

func applyEnvOverrides(cfg *Config) {
	envInt("POWER_FETCH_PORT", &cfg.Services.Fetch.Port)
	envInt("POWER_PREPARE_PORT", &cfg.Services.Prepare.Port)
	envInt("POWER_ESTIMATE_PORT", &cfg.Services.Estimate.Port)
	envInt("POWER_WORKERS", &cfg.Server.Workers)

	if v := os.Getenv("POWER_TLS_ENABLED"); v != "" {
		cfg.TLS.Enabled = truthy(v)
	}
	envString("POWER_TLS_CERT_FILE", &cfg.TLS.CertFile)
	envString("POWER_TLS_KEY_FILE", &cfg.TLS.KeyFile)
	envString("POWER_TLS_CA_FILE", &cfg.TLS.CAFile)

	envString("POWER_PROMETHEUS_QUERY_URL", &cfg.Prometheus.QueryURL)
	envString("POWER_PROMETHEUS_PUSH_URL", &cfg.Prometheus.PushURL)
	envDuration("POWER_PROMETHEUS_SEED_TIMEOUT", &cfg.Prometheus.SeedTimeout)
	envDuration("POWER_PROMETHEUS_PUSH_TIMEOUT", &cfg.Prometheus.PushTimeout)

	envString("POWER_MODEL_OPEN_WATER", &cfg.Models.OpenWaterPath)
	envString("POWER_MODEL_ICE", &cfg.Models.IcePath)

	if v := os.Getenv("POWER_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = truthy(v)
	}
	envString("POWER_CACHE_ADDR", &cfg.Cache.Addr)
	envString("POWER_CACHE_USERNAME", &cfg.Cache.Username)
	envString("POWER_CACHE_PASSWORD", &cfg.Cache.Password)
	envInt("POWER_CACHE_DB", &cfg.Cache.DB)
	envDuration("POWER_CACHE_ARTIFACT_TTL", &cfg.Cache.ArtifactTTL)

	envString("POWER_OUTPUT_EMIT_PATH", &cfg.Output.EmitPath)

	envString("POWER_LOG_LEVEL", &cfg.Logging.Level)
	if v := os.Getenv("POWER_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func truthy(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}
