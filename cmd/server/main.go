// BingFang 病房管理引擎服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/bingfang/bingfang/internal/config"
	"github.com/bingfang/bingfang/internal/database"
	"github.com/bingfang/bingfang/internal/handler"
	"github.com/bingfang/bingfang/internal/metrics"
	"github.com/bingfang/bingfang/internal/middleware"
	"github.com/bingfang/bingfang/internal/repository"
	"github.com/bingfang/bingfang/internal/security"
	"github.com/bingfang/bingfang/pkg/bedfinder"
	"github.com/bingfang/bingfang/pkg/hospital"
	"github.com/bingfang/bingfang/pkg/jobs"
	"github.com/bingfang/bingfang/pkg/logger"
	"github.com/bingfang/bingfang/pkg/model"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	// 打印版本信息
	fmt.Printf("BingFang 病房管理引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// 构建院务服务
	svc := hospital.New(hospital.Options{
		Weights: bedfinder.Weights{
			CareLevelMatch: cfg.Finder.CareLevelWeight,
			Mobility:       cfg.Finder.MobilityWeight,
			WardBalance:    cfg.Finder.WardBalanceWeight,
			ReservePenalty: cfg.Finder.ReservePenalty,
		},
		MinNurses:          cfg.Compliance.MinNurses,
		MinDoctors:         cfg.Compliance.MinDoctors,
		MaxDailyHours:      cfg.Schedule.MaxDailyHours,
		OccupancyThreshold: cfg.Compliance.OccupancyThreshold,
		TrendSamples:       cfg.Compliance.TrendSamples,
		TrendHorizon:       cfg.Compliance.TrendHorizon,
		SnapshotPath:       cfg.Snapshot.Path,
	})

	// 可选的审计归档数据库
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(&cfg.Database)
		if err != nil {
			logger.Error().Err(err).Msg("审计归档数据库不可用，降级为内存审计")
		} else {
			repo := repository.NewAuditRepository(db)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := repo.EnsureSchema(ctx); err != nil {
				logger.Error().Err(err).Msg("审计归档表初始化失败")
			} else {
				svc.Audit().WithSink(repo)
			}
			cancel()
		}
	}

	// 从快照恢复状态
	restored, err := svc.LoadSnapshot()
	if err != nil {
		logger.Error().Err(err).Msg("快照恢复失败，从空状态启动")
	}
	if restored {
		if mismatches := svc.VerifyIntegrity(); len(mismatches) > 0 {
			logger.Warn().Int("mismatches", len(mismatches)).Msg("恢复状态存在不一致，降级运行")
		}
	}

	// 初始管理员：名录为空时自动登记，解决首次登录问题
	if svc.Directory().DoctorCount() == 0 && svc.Directory().NurseCount() == 0 {
		if _, err := svc.AddManager("system", model.ManagerConfig{
			StaffID:  getEnv("ADMIN_STAFF_ID", "admin"),
			Name:     getEnv("ADMIN_NAME", "系统管理员"),
			Username: getEnv("ADMIN_USERNAME", "admin"),
		}); err != nil {
			logger.Warn().Err(err).Msg("初始管理员登记失败")
		}
	}

	// 会话管理
	sessions := security.NewSessionManager(security.DefaultSessionTTL)

	// 创建处理器
	staffHandler := handler.NewStaffHandler(svc, sessions)
	patientHandler := handler.NewPatientHandler(svc)
	scheduleHandler := handler.NewScheduleHandler(svc)
	complianceHandler := handler.NewComplianceHandler(svc)
	auditHandler := handler.NewAuditHandler(svc)

	// 创建 HTTP 服务器
	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		report := svc.QuickHealthCheck()
		status := "ok"
		code := http.StatusOK
		if !report.Passed {
			status = "degraded"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  status,
			"service": "bingfang",
			"report":  report,
		})
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "BingFang 病房管理引擎 API v1",
			"endpoints": {
				"auth": {
					"login": "POST /api/v1/auth/login",
					"logout": "POST /api/v1/auth/logout"
				},
				"staff": {
					"doctors": "POST /api/v1/staff/doctors",
					"nurses": "POST /api/v1/staff/nurses",
					"managers": "POST /api/v1/staff/managers",
					"list": "GET /api/v1/staff"
				},
				"patients": {
					"admit": "POST /api/v1/patients/admit",
					"discharge": "POST /api/v1/patients/discharge",
					"move": "POST /api/v1/patients/move",
					"suggest": "POST /api/v1/patients/suggest",
					"list": "GET /api/v1/patients",
					"waitlist": "GET /api/v1/patients/waitlist",
					"beds": "GET /api/v1/beds"
				},
				"schedule": {
					"assign": "POST /api/v1/schedule/assign",
					"unassign": "POST /api/v1/schedule/unassign",
					"week": "GET /api/v1/schedule/week",
					"uncovered": "GET /api/v1/schedule/uncovered",
					"coverage": "GET /api/v1/schedule/coverage",
					"workload": "GET /api/v1/schedule/workload"
				},
				"compliance": {
					"check": "GET /api/v1/compliance/check",
					"quick": "GET /api/v1/compliance/quick",
					"forecast": "GET /api/v1/compliance/forecast",
					"occupancy": "GET /api/v1/compliance/occupancy",
					"integrity": "GET /api/v1/compliance/integrity"
				},
				"audit": {
					"recent": "GET /api/v1/audit/recent"
				}
			}
		}`))
	})

	// 认证 API
	mux.HandleFunc("/api/v1/auth/login", staffHandler.Login)
	mux.HandleFunc("/api/v1/auth/logout", staffHandler.Logout)

	// 人员管理 API
	mux.HandleFunc("/api/v1/staff/doctors", staffHandler.AddDoctor)
	mux.HandleFunc("/api/v1/staff/nurses", staffHandler.AddNurse)
	mux.HandleFunc("/api/v1/staff/managers", staffHandler.AddManager)
	mux.HandleFunc("/api/v1/staff", staffHandler.List)

	// 患者管理 API
	mux.HandleFunc("/api/v1/patients/admit", patientHandler.Admit)
	mux.HandleFunc("/api/v1/patients/discharge", patientHandler.Discharge)
	mux.HandleFunc("/api/v1/patients/move", patientHandler.Move)
	mux.HandleFunc("/api/v1/patients/suggest", patientHandler.Suggest)
	mux.HandleFunc("/api/v1/patients/waitlist", patientHandler.Waitlist)
	mux.HandleFunc("/api/v1/patients", patientHandler.List)
	mux.HandleFunc("/api/v1/beds", patientHandler.Beds)

	// 排班 API
	mux.HandleFunc("/api/v1/schedule/assign", scheduleHandler.Assign)
	mux.HandleFunc("/api/v1/schedule/unassign", scheduleHandler.Unassign)
	mux.HandleFunc("/api/v1/schedule/week", scheduleHandler.Week)
	mux.HandleFunc("/api/v1/schedule/uncovered", scheduleHandler.Uncovered)
	mux.HandleFunc("/api/v1/schedule/coverage", scheduleHandler.Coverage)
	mux.HandleFunc("/api/v1/schedule/workload", scheduleHandler.Workload)

	// 合规检查 API
	mux.HandleFunc("/api/v1/compliance/check", complianceHandler.Check)
	mux.HandleFunc("/api/v1/compliance/quick", complianceHandler.Quick)
	mux.HandleFunc("/api/v1/compliance/forecast", complianceHandler.Forecast)
	mux.HandleFunc("/api/v1/compliance/occupancy", complianceHandler.Occupancy)
	mux.HandleFunc("/api/v1/compliance/integrity", complianceHandler.Integrity)

	// 审计 API
	mux.HandleFunc("/api/v1/audit/recent", auditHandler.Recent)

	// ========================================
	// 监控端点
	// ========================================

	// Prometheus 指标端点
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	// ========================================
	// 中间件
	// ========================================

	// 会话认证：登录、系统端点与只读根路由免认证
	authMiddleware := middleware.AuthMiddleware(&middleware.AuthConfig{
		SessionManager: sessions,
		SkipPaths: []string{
			"/health",
			"/version",
			cfg.Metrics.Path,
			"/api/v1/auth/login",
		},
	})

	globalRateLimiter = NewRateLimiter(float64(cfg.API.RateLimit))

	// 中间件执行顺序：requestID -> rateLimit -> cors -> auth -> logging -> handler
	httpHandler := requestIDMiddleware(rateLimitMiddleware(corsMiddleware(authMiddleware(loggingMiddleware(mux)))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// ========================================
	// 后台任务
	// ========================================

	runner := jobs.NewRunner(64)
	runner.Add(jobs.Job{
		Name:     "compliance_check",
		Interval: cfg.Jobs.ComplianceInterval,
		Run: func(ctx context.Context) error {
			report := svc.RunComplianceCheck("system")
			for _, issue := range report.Issues {
				metrics.RecordComplianceViolation(issue.Rule, string(issue.Severity))
			}
			return nil
		},
	})
	runner.Add(jobs.Job{
		Name:     "maintenance",
		Interval: cfg.Jobs.MaintenanceInterval,
		Run: func(ctx context.Context) error {
			svc.Maintenance(cfg.Jobs.AuditRetention)
			sessions.Purge()
			svc.VerifyIntegrity()
			return nil
		},
	})
	runner.Add(jobs.Job{
		Name:     "waitlist_drain",
		Interval: cfg.Jobs.WaitlistInterval,
		Run: func(ctx context.Context) error {
			admitted := svc.DrainWaitlist("system")
			for range admitted {
				metrics.RecordAdmission(false)
			}
			metrics.SetWaitlistLength(svc.WaitingList().Len())
			svc.RecordOccupancySample()
			metrics.SetBedOccupancy(svc.Registry().OccupancyRate())
			return nil
		},
	})
	runner.Add(jobs.Job{
		Name:     "snapshot",
		Interval: cfg.Jobs.SnapshotInterval,
		Run: func(ctx context.Context) error {
			return svc.SaveSnapshot()
		},
	})

	jobCtx, jobCancel := context.WithCancel(context.Background())
	runner.Start(jobCtx)

	// 任务结果转指标
	go func() {
		for result := range runner.Results() {
			metrics.RecordJobRun(result.Job, result.Err == nil)
		}
	}()

	svc.Audit().SystemEvent("startup",
		fmt.Sprintf("服务启动 v%s，床位%d张，快照恢复=%t", Version, svc.Registry().TotalBeds(), restored))

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Str("api_docs", fmt.Sprintf("http://localhost:%d/api/v1/", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}

	// 停止后台任务并落盘
	jobCancel()
	runner.Stop()

	svc.Audit().SystemEvent("shutdown", "服务关闭，保存状态快照")
	if err := svc.SaveSnapshot(); err != nil {
		logger.Error().Err(err).Msg("关闭前快照保存失败")
	}

	if db != nil {
		db.Close()
	}

	logger.Info().Msg("服务器已关闭")
}

// getEnv 读取环境变量，空值时返回默认值
func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// requestIDMiddleware 请求ID追踪中间件
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 尝试从请求头获取 Request ID，没有则生成新的
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// 设置响应头
		w.Header().Set("X-Request-ID", requestID)

		// 将 Request ID 存储到 context 中
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware 日志中间件
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 获取 Request ID
		requestID, _ := r.Context().Value("request_id").(string)

		// 包装ResponseWriter以捕获状态码
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("请求处理")

		// 记录Prometheus指标
		metrics.RecordRequestMetrics(r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

// responseWriter 包装ResponseWriter以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RateLimiter 简单的令牌桶限流器
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // 每秒添加的令牌数
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter 创建限流器
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // 允许突发流量
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// globalRateLimiter 按 API_RATE_LIMIT 配置在启动时初始化
var globalRateLimiter = NewRateLimiter(100)

// rateLimitMiddleware 限流中间件
func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !globalRateLimiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "请求过于频繁，请稍后重试",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware CORS中间件
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-Token")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
