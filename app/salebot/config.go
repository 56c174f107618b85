package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/x-xyz/salebot/base/announcement"
	"github.com/x-xyz/salebot/base/metrics"
	"github.com/x-xyz/salebot/base/validator"
	"github.com/x-xyz/salebot/base/window"
)

const (
	publisherTwitter   = "twitter"
	publisherTwitterV2 = "twitterV2"
	publisherDiscord   = "discord"
	publisherConsole   = "console"
)

var (
	ErrMissingTwitterCredentials = errors.New("twitter credentials required")
	ErrMissingDiscordConfig      = errors.New("discord bot key and channel id required")
	ErrInvalidValue              = errors.New("invalid config value")
)

type OpenseaConfig struct {
	ApiKey  string
	Url     string `validate:"omitempty,url"`
	Limit   int    `validate:"gte=1,lte=300"`
	Timeout time.Duration
}

type TwitterConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessKey      string
	AccessSecret   string
	Url            string `validate:"omitempty,url"`
	Encoding       announcement.PayloadEncoding
}

type DiscordConfig struct {
	BotKey    string
	ChannelId string
}

type PublishConfig struct {
	Workers int `validate:"gte=1"`
	Timeout time.Duration
}

type Config struct {
	Debug           bool
	Window          window.Window
	CollectionSlug  string `validate:"required_without=ContractAddress"`
	ContractAddress string `validate:"omitempty,eth_address"`
	Opensea         OpenseaConfig
	Publisher       string `validate:"oneof=twitter twitterV2 discord console"`
	Twitter         TwitterConfig
	Discord         DiscordConfig
	Publish         PublishConfig
	Metrics         metrics.Config
}

// envs pins every key to the variable name operators already use
var envs = map[string]string{
	"debug":                  "DEBUG",
	"seconds":                "SECONDS",
	"windowPolicy":           "WINDOW_POLICY",
	"collectionSlug":         "COLLECTION_SLUG",
	"contractAddress":        "CONTRACT_ADDRESS",
	"opensea.apiKey":         "OPENSEA_API_KEY",
	"opensea.url":            "OPENSEA_URL",
	"opensea.limit":          "OPENSEA_LIMIT",
	"opensea.timeout":        "OPENSEA_TIMEOUT",
	"publisher":              "PUBLISHER",
	"twitter.consumerKey":    "TWITTER_CONSUMER_KEY",
	"twitter.consumerSecret": "TWITTER_CONSUMER_SECRET",
	"twitter.accessKey":      "TWITTER_ACCESS_KEY",
	"twitter.accessSecret":   "TWITTER_ACCESS_SECRET",
	"twitter.url":            "TWITTER_URL",
	"twitter.encoding":       "TWITTER_PAYLOAD_ENCODING",
	"discord.botKey":         "DISCORD_BOT_KEY",
	"discord.channelId":      "DISCORD_CHANNEL_ID",
	"publish.workers":        "PUBLISH_WORKERS",
	"publish.timeout":        "PUBLISH_TIMEOUT",
	"datadog_host":           "DATADOG_HOST",
	"app_name":               "APP_NAME",
	"env_name":               "ENV_NAME",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("salebot", pflag.ContinueOnError)
	fs.String("config", "", "optional yaml config file")
	fs.Bool("dry-run", false, "print announcements instead of publishing them")
	return fs
}

func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("seconds", window.DefaultSeconds)
	v.SetDefault("windowPolicy", string(window.PolicyOffset))
	v.SetDefault("opensea.limit", 100)
	v.SetDefault("opensea.timeout", 10*time.Second)
	v.SetDefault("publisher", publisherTwitter)
	v.SetDefault("publish.workers", 8)
	v.SetDefault("publish.timeout", 10*time.Second)
	v.SetDefault("app_name", "salebot")

	for key, env := range envs {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}
	if err := v.BindPFlag("dryRun", fs.Lookup("dry-run")); err != nil {
		return nil, err
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}

func loadConfig(v *viper.Viper) (*Config, error) {
	policy, err := window.ParsePolicy(v.GetString("windowPolicy"))
	if err != nil {
		return nil, err
	}
	encoding := announcement.PayloadEncoding("")
	if s := v.GetString("twitter.encoding"); s != "" {
		if encoding, err = announcement.ParsePayloadEncoding(s); err != nil {
			return nil, err
		}
	}

	publisher := v.GetString("publisher")
	if v.GetBool("dryRun") {
		publisher = publisherConsole
	}

	r := &strictReader{v: v}
	cfg := &Config{
		Debug: r.readBool("debug"),
		Window: window.Window{
			Policy:  policy,
			Seconds: r.readInt64("seconds"),
		},
		CollectionSlug:  strings.TrimSpace(v.GetString("collectionSlug")),
		ContractAddress: strings.TrimSpace(v.GetString("contractAddress")),
		Opensea: OpenseaConfig{
			ApiKey:  v.GetString("opensea.apiKey"),
			Url:     v.GetString("opensea.url"),
			Limit:   r.readInt("opensea.limit"),
			Timeout: r.readDuration("opensea.timeout"),
		},
		Publisher: publisher,
		Twitter: TwitterConfig{
			ConsumerKey:    v.GetString("twitter.consumerKey"),
			ConsumerSecret: v.GetString("twitter.consumerSecret"),
			AccessKey:      v.GetString("twitter.accessKey"),
			AccessSecret:   v.GetString("twitter.accessSecret"),
			Url:            v.GetString("twitter.url"),
			Encoding:       encoding,
		},
		Discord: DiscordConfig{
			BotKey:    v.GetString("discord.botKey"),
			ChannelId: v.GetString("discord.channelId"),
		},
		Publish: PublishConfig{
			Workers: r.readInt("publish.workers"),
			Timeout: r.readDuration("publish.timeout"),
		},
		Metrics: metrics.Config{
			DdHost:  v.GetString("datadog_host"),
			AppName: v.GetString("app_name"),
			EnvName: v.GetString("env_name"),
		},
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	validate, err := validator.New()
	if err != nil {
		return err
	}
	if err := validator.NewCustomValidator(validate).Validate(cfg); err != nil {
		return err
	}
	switch cfg.Publisher {
	case publisherTwitter, publisherTwitterV2:
		t := cfg.Twitter
		if t.ConsumerKey == "" || t.ConsumerSecret == "" || t.AccessKey == "" || t.AccessSecret == "" {
			return ErrMissingTwitterCredentials
		}
	case publisherDiscord:
		if cfg.Discord.BotKey == "" || cfg.Discord.ChannelId == "" {
			return ErrMissingDiscordConfig
		}
	}
	return nil
}

// strictReader keeps the first unparsable value, viper's getters turn it into a zero value
type strictReader struct {
	v   *viper.Viper
	err error
}

func (r *strictReader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w %s=%v: %v", ErrInvalidValue, key, r.v.Get(key), err)
	}
}

func (r *strictReader) readBool(key string) bool {
	b, err := cast.ToBoolE(r.v.Get(key))
	if err != nil {
		r.fail(key, err)
	}
	return b
}

func (r *strictReader) readInt(key string) int {
	n, err := cast.ToIntE(r.v.Get(key))
	if err != nil {
		r.fail(key, err)
	}
	return n
}

func (r *strictReader) readInt64(key string) int64 {
	n, err := cast.ToInt64E(r.v.Get(key))
	if err != nil {
		r.fail(key, err)
	}
	return n
}

func (r *strictReader) readDuration(key string) time.Duration {
	d, err := cast.ToDurationE(r.v.Get(key))
	if err != nil {
		r.fail(key, err)
	}
	return d
}
