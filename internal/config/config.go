package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	commoncfg "github.com/synca-ui/builder-quantum-landing-sub001/common/config"
)

// Config sited（站点渲染与发布服务）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Site struct {
		BaseDomain      string
		Scheme          string
		PrimaryAliases  []string
		PreviewSuffixes []string // nil = 默认预览托管后缀
		Reserved        []string
		PreviewSize     int
	}
	DBEnabled    bool
	Database     commoncfg.DatabaseConfig
	RedisEnabled bool
	Redis        commoncfg.RedisConfig
	RouteStream  struct {
		Name   string
		MaxLen int64
	}
	MQTTEnabled bool
	MQTT        commoncfg.MQTTConfig
	Publish     commoncfg.PublishConfig
	Log         struct {
		Level  string
		Format string
	}
	// SeedDemo 启动时写入一个示例草稿（仅内存模式有意义）
	SeedDemo bool
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Site.BaseDomain = strings.ToLower(getEnv("BASE_DOMAIN", "maitr.local"))
	cfg.Site.Scheme = getEnv("PUBLIC_SCHEME", "https")
	cfg.Site.PrimaryAliases = parseList(os.Getenv("PRIMARY_ALIASES"))
	if v, ok := os.LookupEnv("PREVIEW_SUFFIXES"); ok {
		cfg.Site.PreviewSuffixes = parseList(v)
		if cfg.Site.PreviewSuffixes == nil {
			cfg.Site.PreviewSuffixes = []string{}
		}
	}
	cfg.Site.Reserved = parseList(os.Getenv("RESERVED_NAMES"))
	cfg.Site.PreviewSize = parseInt(getEnv("MENU_PREVIEW_SIZE", "6"), 6)

	// Default to false: without Postgres the service keeps drafts in memory.
	cfg.DBEnabled = getEnv("DB_ENABLED", "false") == "true"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "sites"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 20
	cfg.Database.MaxIdle = 5
	cfg.Database.LoadFromEnv("DB")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")
	cfg.RouteStream.Name = getEnv("ROUTE_STREAM", "site:routes")
	cfg.RouteStream.MaxLen = int64(parseInt(getEnv("ROUTE_STREAM_MAXLEN", "10000"), 10000))

	cfg.MQTTEnabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "sited"
	cfg.MQTT.Topic = "sites/routes"
	cfg.MQTT.QoS = 1
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Publish.ClaimTTL = parseDuration(getEnv("CLAIM_TTL", "2m"), 2*time.Minute)
	cfg.Publish.LockTTL = parseDuration(getEnv("LOCK_TTL", "5m"), 5*time.Minute)
	cfg.Publish.JobTTL = parseDuration(getEnv("JOB_TTL", "15m"), 15*time.Minute)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")
	cfg.SeedDemo = getEnv("SEED_DEMO", "false") == "true"

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// parseList 逗号分隔，忽略空项
func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
