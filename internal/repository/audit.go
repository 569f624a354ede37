// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bingfang/bingfang/pkg/audit"
)

// DB 数据库接口
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// AuditRepository 审计条目归档仓储
// 实现 audit.Sink，核心状态不入库，只做审计落盘
type AuditRepository struct {
	db DB
}

// NewAuditRepository 创建审计仓储
func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// EnsureSchema 建立审计归档表
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS audit_log (
			id UUID PRIMARY KEY,
			category VARCHAR(32) NOT NULL,
			actor VARCHAR(128) NOT NULL,
			action VARCHAR(64) NOT NULL,
			description TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL
		)`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("建立审计归档表失败: %w", err)
	}
	return nil
}

// Archive 归档一条审计条目
func (r *AuditRepository) Archive(ctx context.Context, entry audit.Entry) error {
	query := `
		INSERT INTO audit_log (id, category, actor, action, description, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, string(entry.Category), entry.Actor, entry.Action, entry.Description, entry.At)
	if err != nil {
		return fmt.Errorf("归档审计条目失败: %w", err)
	}
	return nil
}

// Recent 按时间倒序查询最近的归档条目
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, category, actor, action, description, occurred_at
		FROM audit_log
		ORDER BY occurred_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("查询审计归档失败: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var category string
		if err := rows.Scan(&e.ID, &category, &e.Actor, &e.Action, &e.Description, &e.At); err != nil {
			return nil, fmt.Errorf("读取审计归档行失败: %w", err)
		}
		e.Category = audit.Category(category)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByCategory 按分类统计归档条目数
func (r *AuditRepository) CountByCategory(ctx context.Context) (map[audit.Category]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM audit_log GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("统计审计归档失败: %w", err)
	}
	defer rows.Close()

	counts := make(map[audit.Category]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("读取审计统计行失败: %w", err)
		}
		counts[audit.Category(category)] = count
	}
	return counts, rows.Err()
}
