package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// PricingConfig holds presentation and tax-deduction defaults.
type PricingConfig struct {
	Currency                string  `mapstructure:"currency"`
	Precision               int32   `mapstructure:"precision"`
	DefaultDeductionPercent float64 `mapstructure:"defaultDeductionPercent"`
	MaxDeductionPercent     float64 `mapstructure:"maxDeductionPercent"`
	DeductionLabel          string  `mapstructure:"deductionLabel"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		Currency:                "SEK",
		Precision:               2,
		DefaultDeductionPercent: 30,
		MaxDeductionPercent:     100,
		DeductionLabel:          "ROT",
	}
}

func (c PricingConfig) DefaultDeduction() decimal.Decimal {
	return decimal.NewFromFloat(c.DefaultDeductionPercent)
}

func (c PricingConfig) MaxDeduction() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxDeductionPercent)
}

type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

// NewPricingConfigHolder reads pricing.yml and keeps it current while the
// process runs. A missing file yields the defaults.
func NewPricingConfigHolder(log *zap.Logger) (*PricingConfigHolder, error) {
	return newPricingConfigHolder(log, "/etc/glazier", ".")
}

func newPricingConfigHolder(log *zap.Logger, paths ...string) (*PricingConfigHolder, error) {
	log = log.Named("config.pricing")

	v := viper.New()
	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("GLAZIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPricingConfig()
	v.SetDefault("pricing.currency", defaults.Currency)
	v.SetDefault("pricing.precision", defaults.Precision)
	v.SetDefault("pricing.defaultDeductionPercent", defaults.DefaultDeductionPercent)
	v.SetDefault("pricing.maxDeductionPercent", defaults.MaxDeductionPercent)
	v.SetDefault("pricing.deductionLabel", defaults.DeductionLabel)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	cfg, err := decodePricingConfig(v)
	if err != nil {
		return nil, err
	}
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)

	if !fileLoaded {
		return holder, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodePricingConfig(v)
		if err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validatePricingConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})
	v.WatchConfig()

	return holder, nil
}

// decodePricingConfig merges file, env and defaults into a PricingConfig.
func decodePricingConfig(v *viper.Viper) (PricingConfig, error) {
	var file struct {
		Pricing PricingConfig `mapstructure:"pricing"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return PricingConfig{}, err
	}
	return file.Pricing, nil
}

// NewStaticPricingConfigHolder returns a holder that never reloads.
func NewStaticPricingConfigHolder(cfg PricingConfig) *PricingConfigHolder {
	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

func validatePricingConfig(cfg PricingConfig) error {
	if len(strings.TrimSpace(cfg.Currency)) != 3 {
		return errors.New("pricing.currency must be an ISO 4217 code")
	}
	if cfg.Precision < 0 || cfg.Precision > 4 {
		return errors.New("pricing.precision must be between 0 and 4")
	}
	if cfg.MaxDeductionPercent <= 0 || cfg.MaxDeductionPercent > 100 {
		return errors.New("pricing.maxDeductionPercent must be in (0, 100]")
	}
	if cfg.DefaultDeductionPercent < 0 || cfg.DefaultDeductionPercent > cfg.MaxDeductionPercent {
		return errors.New("pricing.defaultDeductionPercent must be within [0, maxDeductionPercent]")
	}
	return nil
}
