package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// StreakPolicy holds the tunable rules of the streak engine.
type StreakPolicy struct {
	AggregateSubject string   `mapstructure:"aggregateSubject"`
	FreezeInterval   int      `mapstructure:"freezeInterval"`
	MaxFreezes       int      `mapstructure:"maxFreezes"`
	DefaultTimezone  string   `mapstructure:"defaultTimezone"`
	ActivityTypes    []string `mapstructure:"activityTypes"`
}

func DefaultStreakPolicy() StreakPolicy {
	return StreakPolicy{
		AggregateSubject: "overall",
		FreezeInterval:   5,
		MaxFreezes:       2,
		DefaultTimezone:  "UTC",
		ActivityTypes:    []string{"quiz_submit", "login"},
	}
}

// AllowsActivity reports whether activityType is an accepted activity type.
func (p StreakPolicy) AllowsActivity(activityType string) bool {
	for _, t := range p.ActivityTypes {
		if t == activityType {
			return true
		}
	}
	return false
}

type PolicyHolder struct {
	current atomic.Value // holds StreakPolicy
}

// NewStaticPolicyHolder returns a holder that never reloads.
func NewStaticPolicyHolder(policy StreakPolicy) *PolicyHolder {
	holder := &PolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func NewPolicyHolder() (*PolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("streak")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/streakline/config")
	v.AddConfigPath("/etc/streakline")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STREAKLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultStreakPolicy()
	v.SetDefault("streak.aggregateSubject", defaults.AggregateSubject)
	v.SetDefault("streak.freezeInterval", defaults.FreezeInterval)
	v.SetDefault("streak.maxFreezes", defaults.MaxFreezes)
	v.SetDefault("streak.defaultTimezone", defaults.DefaultTimezone)
	v.SetDefault("streak.activityTypes", defaults.ActivityTypes)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg StreakPolicy
	if err := v.UnmarshalKey("streak", &cfg); err != nil {
		return nil, err
	}
	if err := validateStreakPolicy(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticPolicyHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated StreakPolicy
		if err := v.UnmarshalKey("streak", &updated); err != nil {
			log.Printf("[streak-policy] reload failed: %v", err)
			return
		}
		if err := validateStreakPolicy(updated); err != nil {
			log.Printf("[streak-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[streak-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PolicyHolder) Get() StreakPolicy {
	return h.current.Load().(StreakPolicy)
}

func validateStreakPolicy(cfg StreakPolicy) error {
	if strings.TrimSpace(cfg.AggregateSubject) == "" {
		return errors.New("streak.aggregateSubject cannot be empty")
	}
	if cfg.FreezeInterval <= 0 {
		return errors.New("streak.freezeInterval must be positive")
	}
	if cfg.MaxFreezes < 0 {
		return errors.New("streak.maxFreezes cannot be negative")
	}
	if len(cfg.ActivityTypes) == 0 {
		return errors.New("streak.activityTypes cannot be empty")
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return errors.New("streak.defaultTimezone is not a valid IANA zone")
	}
	return nil
}
