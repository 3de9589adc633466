package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultEditInterval Telegram 对同一条消息的编辑频率限制较严，进度消息默认 5 秒刷新一次
const DefaultEditInterval = 5 * time.Second

// RateLimiter 令牌桶限制器
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter 按 QPS 创建限制器
// qps: 每秒允许的请求数，如果为0或负数则不限制
func NewRateLimiter(qps int) *RateLimiter {
	if qps <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	// 允许短时间内的突发请求（桶大小为QPS）
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(qps), qps)}
}

// NewIntervalLimiter 每个 interval 最多放行一次，interval<=0 时不限制
// 用于进度消息编辑节流，每次传输一个实例
func NewIntervalLimiter(interval time.Duration) *RateLimiter {
	if interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait 等待直到获得令牌
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// Allow 检查是否允许当前请求，不阻塞
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// AllowAt 以指定时间判断是否放行，便于测试
func (r *RateLimiter) AllowAt(now time.Time) bool {
	return r.limiter.AllowN(now, 1)
}

// Interval 返回两次放行之间的最小间隔，不限制时为 0
func (r *RateLimiter) Interval() time.Duration {
	limit := r.limiter.Limit()
	if limit == rate.Inf || limit <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(limit))
}
