// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	API        APIConfig        `yaml:"api"`
	Finder     FinderConfig     `yaml:"finder"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Compliance ComplianceConfig `yaml:"compliance"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Jobs       JobsConfig       `yaml:"jobs"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 审计归档数据库配置
// Enabled 为假时审计只保留在内存，不接数据库
type DatabaseConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// APIConfig API配置
type APIConfig struct {
	RateLimit int           `yaml:"rate_limit"`
	Timeout   time.Duration `yaml:"timeout"`
	CORS      CORSConfig    `yaml:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
}

// FinderConfig 床位匹配引擎配置
type FinderConfig struct {
	CareLevelWeight   float64 `yaml:"care_level_weight"`
	MobilityWeight    float64 `yaml:"mobility_weight"`
	WardBalanceWeight float64 `yaml:"ward_balance_weight"`
	ReservePenalty    float64 `yaml:"reserve_penalty"`
}

// ScheduleConfig 排班配置
type ScheduleConfig struct {
	MaxDailyHours float64 `yaml:"max_daily_hours"`
}

// ComplianceConfig 合规检查配置
type ComplianceConfig struct {
	MinNurses          int           `yaml:"min_nurses"`
	MinDoctors         int           `yaml:"min_doctors"`
	OccupancyThreshold float64       `yaml:"occupancy_threshold"` // 百分比
	TrendSamples       int           `yaml:"trend_samples"`
	TrendHorizon       time.Duration `yaml:"trend_horizon"`
}

// SnapshotConfig 状态快照配置
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

// JobsConfig 后台任务配置
type JobsConfig struct {
	ComplianceInterval  time.Duration `yaml:"compliance_interval"`
	MaintenanceInterval time.Duration `yaml:"maintenance_interval"`
	WaitlistInterval    time.Duration `yaml:"waitlist_interval"`
	SnapshotInterval    time.Duration `yaml:"snapshot_interval"`
	AuditRetention      time.Duration `yaml:"audit_retention"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load 从环境变量加载配置
// 先加载 .env 文件（不存在则忽略），环境变量优先
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "bingfang"),
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnvInt("APP_PORT", 7021),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvBool("DB_ENABLED", false),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "bingfang"),
			User:            getEnv("DB_USER", "bingfang"),
			Password:        getEnv("DB_PASSWORD", "bingfang123"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		API: APIConfig{
			RateLimit: getEnvInt("API_RATE_LIMIT", 100),
			Timeout:   getEnvDuration("API_TIMEOUT", 30*time.Second),
			CORS: CORSConfig{
				Enabled: getEnvBool("API_CORS_ENABLED", true),
				Origins: []string{"*"},
			},
		},
		Finder: FinderConfig{
			CareLevelWeight:   getEnvFloat("FINDER_CARE_LEVEL_WEIGHT", 40),
			MobilityWeight:    getEnvFloat("FINDER_MOBILITY_WEIGHT", 20),
			WardBalanceWeight: getEnvFloat("FINDER_WARD_BALANCE_WEIGHT", 20),
			ReservePenalty:    getEnvFloat("FINDER_RESERVE_PENALTY", 10),
		},
		Schedule: ScheduleConfig{
			MaxDailyHours: getEnvFloat("SCHEDULE_MAX_DAILY_HOURS", 8),
		},
		Compliance: ComplianceConfig{
			MinNurses:          getEnvInt("COMPLIANCE_MIN_NURSES", 2),
			MinDoctors:         getEnvInt("COMPLIANCE_MIN_DOCTORS", 1),
			OccupancyThreshold: getEnvFloat("COMPLIANCE_OCCUPANCY_THRESHOLD", 95),
			TrendSamples:       getEnvInt("COMPLIANCE_TREND_SAMPLES", 24),
			TrendHorizon:       getEnvDuration("COMPLIANCE_TREND_HORIZON", 12*time.Hour),
		},
		Snapshot: SnapshotConfig{
			Path: getEnv("SNAPSHOT_PATH", "data/snapshot.json"),
		},
		Jobs: JobsConfig{
			ComplianceInterval:  getEnvDuration("JOBS_COMPLIANCE_INTERVAL", time.Hour),
			MaintenanceInterval: getEnvDuration("JOBS_MAINTENANCE_INTERVAL", 6*time.Hour),
			WaitlistInterval:    getEnvDuration("JOBS_WAITLIST_INTERVAL", 30*time.Minute),
			SnapshotInterval:    getEnvDuration("JOBS_SNAPSHOT_INTERVAL", 15*time.Minute),
			AuditRetention:      getEnvDuration("JOBS_AUDIT_RETENTION", 7*24*time.Hour),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
