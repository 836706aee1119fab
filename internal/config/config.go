package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/env"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/logger"
	"github.com/UjjwalSaini07/OS-Nexus-Studio/internal/runner"
)

// EnvPrefix is prepended to environment overrides, e.g. NEXUS_ENGINE_TIMEOUT.
const EnvPrefix = "NEXUS"

// Config represents the top-level TOML structure.
type Config struct {
	Engine  EngineConfig  `toml:"engine" mapstructure:"engine"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`
	Metrics MetricsConfig `toml:"metrics" mapstructure:"metrics"`
	History HistoryConfig `toml:"history" mapstructure:"history"`
	Server  ServerConfig  `toml:"server" mapstructure:"server"`
}

type EngineConfig struct {
	Path           string        `toml:"path" mapstructure:"path"`
	InstallDir     string        `toml:"install_dir" mapstructure:"install_dir"`
	WorkDir        string        `toml:"workdir" mapstructure:"workdir"`
	Timeout        time.Duration `toml:"timeout" mapstructure:"timeout"`
	MaxOutputBytes int           `toml:"max_output_bytes" mapstructure:"max_output_bytes"`
	Env            []string      `toml:"env" mapstructure:"env"`
	EnvFiles       []string      `toml:"env_files" mapstructure:"env_files"`
	UseOSEnv       bool          `toml:"use_os_env" mapstructure:"use_os_env"`
}

type LogConfig struct {
	Level         string `toml:"level" mapstructure:"level"`
	Format        string `toml:"format" mapstructure:"format"`
	Color         bool   `toml:"color" mapstructure:"color"`
	File          string `toml:"file" mapstructure:"file"`
	TranscriptDir string `toml:"transcript_dir" mapstructure:"transcript_dir"`
	MaxSizeMB     int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups    int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays    int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress      bool   `toml:"compress" mapstructure:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Listen  string `toml:"listen" mapstructure:"listen"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	DSN     string `toml:"dsn" mapstructure:"dsn"`
}

// ServerConfig configures the HTTP API. MaxTimeout caps the per-request
// session timeout callers may ask for.
type ServerConfig struct {
	Listen     string        `toml:"listen" mapstructure:"listen"`
	BasePath   string        `toml:"base_path" mapstructure:"base_path"`
	MaxTimeout time.Duration `toml:"max_timeout" mapstructure:"max_timeout"`
	TLS        TLSConfig     `toml:"tls" mapstructure:"tls"`
}

// TLSConfig serves the API over HTTPS. CertFile/KeyFile take precedence;
// otherwise tls.crt and tls.key are read from Dir, generated there first
// when AutoGenerate is set.
type TLSConfig struct {
	Enabled      bool     `toml:"enabled" mapstructure:"enabled"`
	CertFile     string   `toml:"cert_file" mapstructure:"cert_file"`
	KeyFile      string   `toml:"key_file" mapstructure:"key_file"`
	Dir          string   `toml:"dir" mapstructure:"dir"`
	AutoGenerate bool     `toml:"auto_generate" mapstructure:"auto_generate"`
	Hosts        []string `toml:"hosts" mapstructure:"hosts"` // DNS names and IPs for generated certs
	ValidDays    int      `toml:"valid_days" mapstructure:"valid_days"`
	MinVersion   string   `toml:"min_version" mapstructure:"min_version"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.path", "../server/main_system")
	v.SetDefault("engine.install_dir", "")
	v.SetDefault("engine.workdir", "")
	v.SetDefault("engine.timeout", "10s")
	v.SetDefault("engine.max_output_bytes", runner.DefaultMaxOutputBytes)
	v.SetDefault("engine.env", []string{})
	v.SetDefault("engine.env_files", []string{})
	v.SetDefault("engine.use_os_env", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.color", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.transcript_dir", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("log.compress", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9100")

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.dsn", "")

	v.SetDefault("server.listen", "127.0.0.1:8080")
	v.SetDefault("server.base_path", "/api")
	v.SetDefault("server.max_timeout", "5m")
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("server.tls.hosts", []string{"localhost", "127.0.0.1"})
	v.SetDefault("server.tls.valid_days", 365)
	v.SetDefault("server.tls.min_version", "1.2")
}

// Load reads path (TOML) on top of the defaults and applies NEXUS_*
// environment overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if path != "" {
		c.resolveRelative(filepath.Dir(path))
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// resolveRelative anchors file references other than the engine path
// (which is relative to install_dir) at the config file's directory.
func (c *Config) resolveRelative(dir string) {
	abs := func(p string) string {
		if p != "" && !filepath.IsAbs(p) {
			return filepath.Join(dir, p)
		}
		return p
	}
	for i, p := range c.Engine.EnvFiles {
		c.Engine.EnvFiles[i] = abs(p)
	}
	c.Log.File = abs(c.Log.File)
	c.Log.TranscriptDir = abs(c.Log.TranscriptDir)
	c.Server.TLS.CertFile = abs(c.Server.TLS.CertFile)
	c.Server.TLS.KeyFile = abs(c.Server.TLS.KeyFile)
	c.Server.TLS.Dir = abs(c.Server.TLS.Dir)
}

// Validate rejects settings no component could honour.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Engine.Path) == "" {
		errs = append(errs, errors.New("engine.path is required"))
	}
	if c.Engine.Timeout < 0 {
		errs = append(errs, fmt.Errorf("engine.timeout must be >= 0, got %s", c.Engine.Timeout))
	}
	if c.Engine.MaxOutputBytes < 0 {
		errs = append(errs, fmt.Errorf("engine.max_output_bytes must be >= 0, got %d", c.Engine.MaxOutputBytes))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.History.Enabled && strings.TrimSpace(c.History.DSN) == "" {
		errs = append(errs, errors.New("history.dsn is required when history is enabled"))
	}
	if bp := c.Server.BasePath; bp != "" && !strings.HasPrefix(bp, "/") {
		errs = append(errs, fmt.Errorf("server.base_path must start with '/', got %q", bp))
	}
	if c.Server.MaxTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.max_timeout must be >= 0, got %s", c.Server.MaxTimeout))
	}
	if t := c.Server.TLS; t.Enabled {
		if (t.CertFile == "") != (t.KeyFile == "") {
			errs = append(errs, errors.New("server.tls.cert_file and server.tls.key_file must be set together"))
		}
		if t.CertFile == "" && t.Dir == "" {
			errs = append(errs, errors.New("server.tls needs cert_file/key_file or dir"))
		}
	}
	return errors.Join(errs...)
}

// Logger maps the [log] section onto the logger package.
func (c LogConfig) Logger() logger.Config {
	return logger.Config{
		Level:         c.Level,
		Format:        c.Format,
		Color:         c.Color,
		File:          c.File,
		TranscriptDir: c.TranscriptDir,
		MaxSizeMB:     c.MaxSizeMB,
		MaxBackups:    c.MaxBackups,
		MaxAgeDays:    c.MaxAgeDays,
		Compress:      c.Compress,
	}
}

// RunnerSpec resolves the engine path and merges its environment.
func (c EngineConfig) RunnerSpec() (runner.Spec, error) {
	path, err := runner.ResolveEnginePath(c.Path, c.InstallDir)
	if err != nil {
		return runner.Spec{}, err
	}
	env, err := c.MergedEnv()
	if err != nil {
		return runner.Spec{}, err
	}
	return runner.Spec{
		Path:           path,
		WorkDir:        c.WorkDir,
		Env:            env,
		MaxOutputBytes: c.MaxOutputBytes,
	}, nil
}

// MergedEnv builds the engine environment. Precedence: OS env (when
// use_os_env) provides the base, env_files apply in order, and the env list
// overrides last; ${VAR} references are expanded against the result. It
// returns nil when nothing beyond the OS env is configured, which lets the
// child inherit the caller's environment.
func (c EngineConfig) MergedEnv() ([]string, error) {
	if len(c.Env) == 0 && len(c.EnvFiles) == 0 && c.UseOSEnv {
		return nil, nil
	}
	e := env.New(c.UseOSEnv)
	for _, p := range c.EnvFiles {
		pairs, err := loadEnvFile(p)
		if err != nil {
			return nil, err
		}
		for k, v := range pairs {
			e.Set(k, v)
		}
	}
	e.SetPairs(c.Env)
	return e.Slice(), nil
}

// LoadEnvFile parses a simple .env file and returns a slice of "KEY=VALUE" entries.
func LoadEnvFile(path string) ([]string, error) {
	m, err := loadEnvFile(path)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out, nil
}

// loadEnvFile parses KEY=VALUE lines (no export, no quotes). Lines starting with # are ignored.
func loadEnvFile(path string) (map[string]string, error) {
	clean := filepath.Clean(path)
	b, err := os.ReadFile(clean)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string)
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if k, v, ok := strings.Cut(line, "="); ok {
			m[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return m, nil
}
