package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    Server
	Postgres  Postgres
	Redis     Redis
	Store     Store
	Fanout    Fanout
	Queue     Queue
	Presence  Presence
	RateLimit RateLimit
	Chat      Chat
	Outbox    Outbox
	JWT       JWT
	Media     Media
	Logger    LoggerMode
}

type Server struct {
	Port           string
	Environment    string
	AllowedOrigins []string
	MaxFrameBytes  int64
	ReadTimeout    time.Duration
	RequestTimeout time.Duration
}

type Postgres struct {
	DSN          string
	MaxConns     int32
	EnsureSchema bool
}

type Redis struct {
	URL string
}

// Store selects the durable store adapter: "postgres" or "memory".
type Store struct {
	Driver string
}

// Fanout selects the cross-process relay: "redis", "nats" or "local".
type Fanout struct {
	Driver  string
	Channel string
	NatsURL string
}

type Queue struct {
	Concurrency int
	Queues      string
}

type Presence struct {
	TTL           time.Duration
	StaleAfter    time.Duration
	SweepInterval time.Duration
}

type RateLimit struct {
	PerSecond int
	Burst     int
	Window    time.Duration
}

type Chat struct {
	PublicRooms []string
	RecentLimit int
	EditWindow  time.Duration
	ReceiptTTL  time.Duration
}

type Outbox struct {
	Interval  time.Duration
	BatchSize int
}

type JWT struct {
	Secret string
}

type Media struct {
	BaseURL string
}

type LoggerMode struct {
	Development bool
	Level       string
}

// Load reads .env, then config/<filename>.yaml when present, then CHAT_* environment overrides.
func Load(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	v, err := LoadConfig(filename)
	if err != nil {
		return nil, err
	}
	return ParseConfig(v)
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath("config")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	err := v.Unmarshal(&c)
	if err != nil {
		slog.Error("Unable to unmarshal config", "err", err)
		return nil, err
	}
	c.Server.AllowedOrigins = splitList(c.Server.AllowedOrigins)
	c.Chat.PublicRooms = splitList(c.Chat.PublicRooms)
	if c.JWT.Secret == "" {
		return nil, errors.New("config: jwt.secret is required")
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowedorigins", []string{})
	v.SetDefault("server.maxframebytes", 1<<20)
	v.SetDefault("server.readtimeout", 60*time.Second)
	v.SetDefault("server.requesttimeout", 5*time.Second)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxconns", 4)
	v.SetDefault("postgres.ensureschema", true)

	v.SetDefault("redis.url", "redis://localhost:6379/0")

	v.SetDefault("store.driver", "postgres")

	v.SetDefault("fanout.driver", "redis")
	v.SetDefault("fanout.channel", "chat:fanout")
	v.SetDefault("fanout.natsurl", "nats://127.0.0.1:4222")

	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", "chat=2,default=1")

	v.SetDefault("presence.ttl", 90*time.Second)
	v.SetDefault("presence.staleafter", 90*time.Second)
	v.SetDefault("presence.sweepinterval", 60*time.Second)

	v.SetDefault("ratelimit.persecond", 5)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("ratelimit.window", time.Second)

	v.SetDefault("chat.publicrooms", []string{"lobby"})
	v.SetDefault("chat.recentlimit", 50)
	v.SetDefault("chat.editwindow", 5*time.Minute)
	v.SetDefault("chat.receiptttl", 14*24*time.Hour)

	v.SetDefault("outbox.interval", 5*time.Second)
	v.SetDefault("outbox.batchsize", 100)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("media.baseurl", "")

	v.SetDefault("logger.development", true)
	v.SetDefault("logger.level", "info")
}

// splitList accepts both yaml lists and a single comma-separated env value.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
