// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	// 添加请求ID
	if reqID, ok := ctx.Value("request_id").(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	// 添加操作员ID
	if operatorID, ok := ctx.Value("operator_id").(string); ok {
		l = l.With().Str("operator_id", operatorID).Logger()
	}

	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// WithFields 添加多个字段
func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// HospitalLogger 院务引擎专用日志器
type HospitalLogger struct {
	base *zerolog.Logger
}

// NewHospitalLogger 创建院务引擎日志器
func NewHospitalLogger() *HospitalLogger {
	l := Get().With().Str("component", "hospital").Logger()
	return &HospitalLogger{base: &l}
}

// AdmissionDecision 记录入院床位决策
func (l *HospitalLogger) AdmissionDecision(patientID, bedID string, confidence float64) {
	l.base.Info().
		Str("patient_id", patientID).
		Str("bed_id", bedID).
		Float64("confidence", confidence).
		Msg("入院床位分配")
}

// PatientQueued 记录患者进入等候队列
func (l *HospitalLogger) PatientQueued(patientID, reason string) {
	l.base.Warn().
		Str("patient_id", patientID).
		Str("reason", reason).
		Msg("无可用床位，患者进入等候队列")
}

// ComplianceViolation 记录合规违规
func (l *HospitalLogger) ComplianceViolation(rule, details string) {
	l.base.Warn().
		Str("rule", rule).
		Str("details", details).
		Msg("合规违规")
}

// IntegrityMismatch 记录数据完整性异常
func (l *HospitalLogger) IntegrityMismatch(details string) {
	l.base.Warn().
		Str("details", details).
		Msg("数据完整性异常，系统降级运行")
}

// SnapshotSaved 记录快照保存
func (l *HospitalLogger) SnapshotSaved(path string, duration time.Duration, size int) {
	l.base.Info().
		Str("path", path).
		Dur("duration", duration).
		Int("bytes", size).
		Msg("状态快照已保存")
}

// JobResult 记录后台任务结果
func (l *HospitalLogger) JobResult(job string, duration time.Duration, err error) {
	if err != nil {
		l.base.Error().
			Str("job", job).
			Dur("duration", duration).
			Err(err).
			Msg("后台任务失败")
		return
	}
	l.base.Debug().
		Str("job", job).
		Dur("duration", duration).
		Msg("后台任务完成")
}
