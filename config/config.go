// Package config loads server settings from a YAML file and RE_* environment
// variables. Environment variables win; every key has a default.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/actuarial/reinsurance-engine/underwriting"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Netting    NettingConfig    `mapstructure:"netting"`
	Commission CommissionConfig `mapstructure:"commission"`
	Batch      BatchConfig      `mapstructure:"batch"`
	Scenarios  ScenariosConfig  `mapstructure:"scenarios"`
}

type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type NettingConfig struct {
	// StrictPolicyCounts fails a net whose gross and ceded policy counts
	// differ. When false the mismatch is logged and the gross count kept.
	StrictPolicyCounts bool `mapstructure:"strict_policy_counts"`
}

// Mode maps the setting onto the net mode.
func (c NettingConfig) Mode() underwriting.NetMode {
	if c.StrictPolicyCounts {
		return underwriting.NetStrict
	}
	return underwriting.NetLenient
}

type CommissionConfig struct {
	// BandsFile is a JSON or YAML band table used when a request brings none.
	BandsFile string `mapstructure:"bands_file"`
	Additive  bool   `mapstructure:"additive"`
}

type BatchConfig struct {
	MaxParallel int `mapstructure:"max_parallel"`
	MaxPeriods  int `mapstructure:"max_periods"`
}

type ScenariosConfig struct {
	// RiskBandsFile is a JSON or YAML risk band table offered as the
	// configured-quota-share demo. Empty disables it.
	RiskBandsFile string `mapstructure:"risk_bands_file"`
}

// Load reads path if it is not empty, then applies the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Batch.MaxParallel < 1 {
		cfg.Batch.MaxParallel = 1
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("netting.strict_policy_counts", true)
	v.SetDefault("commission.bands_file", "")
	v.SetDefault("commission.additive", true)
	v.SetDefault("batch.max_parallel", 8)
	v.SetDefault("batch.max_periods", 10000)
	v.SetDefault("scenarios.risk_bands_file", "")
}
