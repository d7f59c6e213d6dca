package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	TransportSFTP  = "sftp"
	TransportS3    = "s3"
	TransportLocal = "local"
)

// DeliveryConfig describes where royalty reports are pushed.
type DeliveryConfig struct {
	TransportMode  string `mapstructure:"transport_mode"`
	Endpoint       string `mapstructure:"endpoint"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	PrivateKey     string `mapstructure:"private_key"`
	HostKey        string `mapstructure:"host_key"`
	KnownHostsFile string `mapstructure:"known_hosts_file"`
	BaseDir        string `mapstructure:"base_dir"`
	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region"`
	AccessKeyID    string `mapstructure:"access_key_id"`
	SecretKey      string `mapstructure:"secret_access_key"`
}

func DefaultDeliveryConfig() DeliveryConfig {
	return DeliveryConfig{
		TransportMode: TransportLocal,
		BaseDir:       "reports",
	}
}

type DeliveryConfigHolder struct {
	current atomic.Value // holds DeliveryConfig
}

// NewDeliveryConfigHolder reads delivery.yml and keeps it fresh while the file changes.
func NewDeliveryConfigHolder(log *zap.Logger) (*DeliveryConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("delivery")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/counterreport/config")
	v.AddConfigPath("/etc/counterreport")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COUNTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultDeliveryConfig()
	v.SetDefault("delivery.transport_mode", defaults.TransportMode)
	v.SetDefault("delivery.base_dir", defaults.BaseDir)

	found := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		found = false
	}

	var cfg DeliveryConfig
	if err := v.UnmarshalKey("delivery", &cfg); err != nil {
		return nil, err
	}
	if err := ValidateDeliveryConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticDeliveryConfig(cfg)
	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DeliveryConfig
		if err := v.UnmarshalKey("delivery", &updated); err != nil {
			log.Warn("delivery config reload failed", zap.Error(err))
			return
		}
		if err := ValidateDeliveryConfig(updated); err != nil {
			log.Warn("invalid delivery config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("delivery config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// NewStaticDeliveryConfig wraps a fixed config, mostly for tests and the CLI.
func NewStaticDeliveryConfig(cfg DeliveryConfig) *DeliveryConfigHolder {
	holder := &DeliveryConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *DeliveryConfigHolder) Get() DeliveryConfig {
	return h.current.Load().(DeliveryConfig)
}

func ValidateDeliveryConfig(cfg DeliveryConfig) error {
	switch strings.ToLower(strings.TrimSpace(cfg.TransportMode)) {
	case TransportSFTP:
		if cfg.Endpoint == "" {
			return errors.New("delivery.endpoint is required for sftp")
		}
		if cfg.User == "" {
			return errors.New("delivery.user is required for sftp")
		}
	case TransportS3:
		if cfg.Bucket == "" {
			return errors.New("delivery.bucket is required for s3")
		}
	case TransportLocal:
		if cfg.BaseDir == "" {
			return errors.New("delivery.base_dir is required for local")
		}
	default:
		return errors.New("delivery.transport_mode must be one of sftp, s3, local")
	}
	return nil
}
