// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（连接串、密钥）和 APP_ENV
//  2. 根据 APP_ENV 加载 configs/common.yaml 和 configs/{env}.yaml
//  3. 环境变量可覆盖 YAML 配置
//
// 凭据单一数据源：
//
//	密码/密钥只存在 .env 文件中（YAML 中不存储任何密码）。
//	ACCESS_TOKEN_SECRET、STRIPE_SECRET_KEY、MONGO_URI 均从环境变量读取。
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"harmonic-server/internal/apiserver/auth"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Name string `yaml:"name"`
	URI  string `yaml:"uri"` // 直接指定 URI（优先于 host/port）
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"` // 只从 REDIS_PASSWORD 环境变量读取
}

// AuthConfig 认证配置
// 注意：密钥只从 ACCESS_TOKEN_SECRET 环境变量读取，不存储在 YAML 中
type AuthConfig struct {
	TokenTTL string `yaml:"token_ttl"` // 例如 "168h"
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env             Environment
	MongoURI        string
	MongoDatabase   string
	RedisURL        string // 空表示禁用缓存
	APIPort         string
	Auth            auth.Config
	StripeSecretKey string
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/common.yaml + configs/{env}.yaml
// 3. 构建最终配置
func Load() *Config {
	// 加载 .env
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// 解析环境
	env := parseEnv(getEnv("APP_ENV", "dev"))

	// 加载 YAML 配置
	yamlCfg := loadYAMLConfig(env)

	// 从环境变量获取敏感信息
	yamlCfg.Redis.Password = os.Getenv("REDIS_PASSWORD")

	cfg := &Config{
		Env:             env,
		MongoURI:        buildMongoURI(yamlCfg.Database),
		MongoDatabase:   yamlCfg.Database.Name,
		APIPort:         getEnv("PORT", yamlCfg.Server.Port),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		Auth: auth.Config{
			JWTSecret: os.Getenv("ACCESS_TOKEN_SECRET"),
			TokenTTL:  parseTokenTTL(yamlCfg.Auth.TokenTTL),
		},
	}

	if yamlCfg.Redis.Enabled {
		cfg.RedisURL = buildRedisURL(yamlCfg.Redis)
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.RedisURL = url
	}

	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	// 1. 初始化默认值
	cfg := &YAMLConfig{
		Server:   ServerConfig{Port: "5001"},
		Database: DatabaseConfig{Host: "localhost", Port: 27017, Name: "harmonic"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379, DB: 0},
		Auth:     AuthConfig{TokenTTL: "168h"},
	}

	// 2. 加载 common.yaml（公共配置）
	for _, base := range configPaths {
		path := filepath.Join(base, "common.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	// 3. 加载 {env}.yaml（环境特定配置，覆盖公共配置）
	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

// buildMongoURI 构建 MongoDB 连接字符串
// MONGO_URI 环境变量 > yaml uri > host/port 拼装
func buildMongoURI(db DatabaseConfig) string {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		return uri
	}
	if db.URI != "" {
		return db.URI
	}
	return fmt.Sprintf("mongodb://%s:%d", db.Host, db.Port)
}

// buildRedisURL 构建 Redis 连接字符串
func buildRedisURL(redis RedisConfig) string {
	if redis.Password != "" {
		return fmt.Sprintf("redis://:%s@%s:%d/%d", redis.Password, redis.Host, redis.Port, redis.DB)
	}
	return fmt.Sprintf("redis://%s:%d/%d", redis.Host, redis.Port, redis.DB)
}

// parseTokenTTL 解析令牌有效期，非法或缺省时回退默认值
func parseTokenTTL(s string) time.Duration {
	if s == "" {
		return auth.DefaultConfig().TokenTTL
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return auth.DefaultConfig().TokenTTL
	}
	return d
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏密码）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Mongo: %s/%s, Redis: %s, Port: %s}",
		c.Env, maskPassword(c.MongoURI), c.MongoDatabase, maskPassword(c.RedisURL), c.APIPort)
}

// maskPassword 隐藏连接串中的密码
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:/@]*:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}
