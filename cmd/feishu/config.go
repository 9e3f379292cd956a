package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	AppID             string        `mapstructure:"app_id"`
	AppSecret         string        `mapstructure:"app_secret"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	TokenExpireBuffer int           `mapstructure:"token_expire_buffer"`
	SingleFlight      bool          `mapstructure:"single_flight"`

	RedisURL    string `mapstructure:"redis_url"`
	RedisPrefix string `mapstructure:"redis_prefix"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Addr              string `mapstructure:"addr"`
	EncryptKey        string `mapstructure:"encrypt_key"`
	VerificationToken string `mapstructure:"verification_token"`
}

var configDefaults = map[string]any{
	"app_id":              "",
	"app_secret":          "",
	"base_url":            "",
	"timeout":             30 * time.Second,
	"token_expire_buffer": 0,
	"single_flight":       false,
	"redis_url":           "",
	"redis_prefix":        "",
	"log_level":           "info",
	"log_format":          "json",
	"addr":                ":8080",
	"encrypt_key":         "",
	"verification_token":  "",
}

// 命令行参数名与配置 key 的对应关系
var configFlags = map[string]string{
	"app-id":      "app_id",
	"app-secret":  "app_secret",
	"base-url":    "base_url",
	"timeout":     "timeout",
	"redis-url":   "redis_url",
	"log-level":   "log_level",
	"log-format":  "log_format",
	"addr":        "addr",
	"encrypt-key": "encrypt_key",
}

func addConfigFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "config file (yaml, json, toml or env)")
	fs.String("app-id", "", "app id (FEISHU_APP_ID)")
	fs.String("app-secret", "", "app secret (FEISHU_APP_SECRET)")
	fs.String("base-url", "", "open api base url (FEISHU_BASE_URL)")
	fs.Duration("timeout", 0, "per request timeout (FEISHU_TIMEOUT)")
	fs.String("redis-url", "", "share the token cache through redis, e.g. redis://localhost:6379/0 (FEISHU_REDIS_URL)")
	fs.String("log-level", "", "debug, info, warn or error (FEISHU_LOG_LEVEL)")
	fs.String("log-format", "", "json or console (FEISHU_LOG_FORMAT)")
}

// loadConfig 优先级: 命令行参数 > FEISHU_* 环境变量 > 配置文件 > 默认值
func loadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("FEISHU")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for name, key := range configFlags {
		if flag := fs.Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
