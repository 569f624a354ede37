// Package compliance 提供合规规则评估引擎
package compliance

import (
	"sort"
	"sync"

	"github.com/bingfang/bingfang/pkg/logger"
)

// Evaluator 合规评估器
// 规则独立评估、全部收集，不短路
type Evaluator struct {
	rules []Rule
	mu    sync.RWMutex
	log   *logger.HospitalLogger
}

// NewEvaluator 创建合规评估器
func NewEvaluator() *Evaluator {
	return &Evaluator{
		rules: make([]Rule, 0),
		log:   logger.NewHospitalLogger(),
	}
}

// Register 注册规则
// 同编码规则替换旧规则；error级别在前，同级别按编码排序
func (e *Evaluator) Register(r Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, existing := range e.rules {
		if existing.Code() == r.Code() {
			e.rules[i] = r
			return
		}
	}
	e.rules = append(e.rules, r)

	sort.Slice(e.rules, func(i, j int) bool {
		ri, rj := e.rules[i], e.rules[j]
		if ri.Severity() != rj.Severity() {
			return ri.Severity() == SeverityError
		}
		return ri.Code() < rj.Code()
	})
}

// RegisterAll 批量注册规则
func (e *Evaluator) RegisterAll(rules []Rule) {
	for _, r := range rules {
		e.Register(r)
	}
}

// Count 返回规则数量
func (e *Evaluator) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// Evaluate 对快照评估全部规则，收集所有违规项
func (e *Evaluator) Evaluate(ctx *Context) []Issue {
	e.mu.RLock()
	rules := make([]Rule, len(e.rules))
	copy(rules, e.rules)
	e.mu.RUnlock()

	var issues []Issue
	for _, r := range rules {
		found := r.Evaluate(ctx)
		for _, issue := range found {
			e.log.ComplianceViolation(issue.Rule, issue.Description)
		}
		issues = append(issues, found...)
	}
	return issues
}

// QuickCheck 快速健康检查，只评估标记为 Quick 的规则
func (e *Evaluator) QuickCheck(ctx *Context) []Issue {
	e.mu.RLock()
	rules := make([]Rule, 0, len(e.rules))
	for _, r := range e.rules {
		if r.Quick() {
			rules = append(rules, r)
		}
	}
	e.mu.RUnlock()

	var issues []Issue
	for _, r := range rules {
		issues = append(issues, r.Evaluate(ctx)...)
	}
	return issues
}

// Report 合规评估报告
type Report struct {
	Passed   bool    `json:"passed"`
	Issues   []Issue `json:"issues"`
	Errors   int     `json:"errors"`
	Warnings int     `json:"warnings"`
}

// BuildReport 汇总违规项生成报告
func BuildReport(issues []Issue) *Report {
	report := &Report{
		Passed: len(issues) == 0,
		Issues: issues,
	}
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			report.Errors++
		} else {
			report.Warnings++
		}
	}
	return report
}
