package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConns        int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// MQTTConfig MQTT配置（路由激活广播）
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
	Topic    string
}

// PublishConfig 发布流程配置
type PublishConfig struct {
	// ClaimTTL 地址占用（pending）标记的过期时间
	ClaimTTL time.Duration
	// LockTTL 同一配置部署锁的过期时间
	LockTTL time.Duration
	// JobTTL 已结束的部署记录在内存中保留的时间（供轮询）
	JobTTL time.Duration
}

// GetDSN lib/pq key=value 连接串；含空格或引号的值按 libpq 规则加引号
func (c *DatabaseConfig) GetDSN() string {
	pairs := []struct{ k, v string }{
		{"host", c.Host},
		{"port", strconv.Itoa(c.Port)},
		{"user", c.User},
		{"password", c.Password},
		{"dbname", c.Database},
		{"sslmode", c.SSLMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.v == "" {
			continue
		}
		parts = append(parts, p.k+"="+quoteDSN(p.v))
	}
	return strings.Join(parts, " ")
}

func quoteDSN(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// LoadFromEnv 读取 <prefix>_HOST/_PORT/_USER/_PASSWORD/_NAME/_SSLMODE/_MAX_CONNS/_MAX_IDLE/_CONN_MAX_LIFETIME
func (c *DatabaseConfig) LoadFromEnv(prefix string) {
	envString(prefix+"_HOST", &c.Host)
	envInt(prefix+"_PORT", &c.Port)
	envString(prefix+"_USER", &c.User)
	envString(prefix+"_PASSWORD", &c.Password)
	envString(prefix+"_NAME", &c.Database)
	envString(prefix+"_SSLMODE", &c.SSLMode)
	envInt(prefix+"_MAX_CONNS", &c.MaxConns)
	envInt(prefix+"_MAX_IDLE", &c.MaxIdle)
	envDuration(prefix+"_CONN_MAX_LIFETIME", &c.ConnMaxLifetime)
}

// LoadFromEnv 读取 <prefix>_ADDR/_PASSWORD/_DB/_POOL_SIZE
func (c *RedisConfig) LoadFromEnv(prefix string) {
	envString(prefix+"_ADDR", &c.Addr)
	envString(prefix+"_PASSWORD", &c.Password)
	envInt(prefix+"_DB", &c.DB)
	envInt(prefix+"_POOL_SIZE", &c.PoolSize)
}

// LoadFromEnv 读取 <prefix>_BROKER/_CLIENT_ID/_USERNAME/_PASSWORD/_TOPIC/_QOS
func (c *MQTTConfig) LoadFromEnv(prefix string) {
	envString(prefix+"_BROKER", &c.Broker)
	envString(prefix+"_CLIENT_ID", &c.ClientID)
	envString(prefix+"_USERNAME", &c.Username)
	envString(prefix+"_PASSWORD", &c.Password)
	envString(prefix+"_TOPIC", &c.Topic)
	q := int(c.QoS)
	envInt(prefix+"_QOS", &q)
	if q >= 0 && q <= 2 {
		c.QoS = byte(q)
	}
}

// 未设置或无法解析时保留原值

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		*dst = v
	}
}

func envDuration(key string, dst *time.Duration) {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil && d > 0 {
		*dst = d
	}
}
