package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/model"
	"github.com/Veraticus/sapflow/internal/resolver"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	TaskAliases          map[string]string
	AreaRules            resolver.AreaRules
	DatabasePath         string
	PlaceholderOperation string
	ExportDir            string
	ServerAddr           string
	Factory              string
	TLS                  TLSConfig
	RunTTL               time.Duration
}

// TLSConfig selects HTTPS for the API server.
type TLSConfig struct {
	CertDir string
	Hosts   []string
	Enabled bool
}

// SetDefaults registers the default values on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "~/.local/share/sapflow/sapflow.db")
	v.SetDefault("resolver.placeholder_operation", model.PlaceholderOperation)
	v.SetDefault("import.task_aliases", map[string]string{"3986": "3060"})
	v.SetDefault("import.factory", "")
	v.SetDefault("export.dir", "./tmp_csv_sap")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.run_ttl", "30m")
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("server.tls.cert_dir", "~/.local/share/sapflow/certs")
	v.SetDefault("server.tls.hosts", []string{})
}

// Load reads the configuration from viper, applying defaults for anything unset.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		DatabasePath:         ExpandPath(v.GetString("database.path")),
		PlaceholderOperation: strings.TrimSpace(v.GetString("resolver.placeholder_operation")),
		ExportDir:            ExpandPath(v.GetString("export.dir")),
		ServerAddr:           v.GetString("server.addr"),
		RunTTL:               v.GetDuration("server.run_ttl"),
		TaskAliases:          v.GetStringMapString("import.task_aliases"),
		Factory:              strings.TrimSpace(v.GetString("import.factory")),
		AreaRules:            resolver.DefaultAreaRules(),
		TLS: TLSConfig{
			Enabled: v.GetBool("server.tls.enabled"),
			CertDir: ExpandPath(v.GetString("server.tls.cert_dir")),
			Hosts:   v.GetStringSlice("server.tls.hosts"),
		},
	}

	if v.IsSet("resolver.area_rules") {
		var rules resolver.AreaRules
		if err := v.UnmarshalKey("resolver.area_rules", &rules); err != nil {
			return Config{}, fmt.Errorf("%w: resolver.area_rules: %w", common.ErrInvalidConfig, err)
		}
		cfg.AreaRules = rules
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath()
	}
	if cfg.PlaceholderOperation == "" {
		return Config{}, fmt.Errorf("%w: resolver.placeholder_operation is empty", common.ErrInvalidConfig)
	}
	if cfg.TLS.Enabled && cfg.TLS.CertDir == "" {
		return Config{}, fmt.Errorf("%w: server.tls.cert_dir is empty", common.ErrInvalidConfig)
	}
	if cfg.RunTTL <= 0 {
		return Config{}, fmt.Errorf("%w: server.run_ttl must be positive", common.ErrInvalidConfig)
	}

	return cfg, nil
}

// ResolverOptions returns the resolver options this configuration selects.
func (c Config) ResolverOptions() resolver.Options {
	return resolver.Options{
		PlaceholderOperation: c.PlaceholderOperation,
		AreaRules:            c.AreaRules,
	}
}
