package sheets

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoTarget 尚未建立同步目标，需先调用 EnsureTarget
var ErrNoTarget = errors.New("no sync target: call EnsureTarget first")

// AuthError 认证/授权失败；不重试，直接上抛
type AuthError struct {
	Op     string
	Detail string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed during %s: %s", e.Op, e.Detail)
}

// RateLimitError 远端限流；按 RetryAfter（若给出）退避后重试
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// TransientError 临时网络/远端错误；有限次重试
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient error during %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// RowConflictError 远端行被手工改动且无法识别；只上报不自动修复
type RowConflictError struct {
	RowKey string
	Reason string
}

func (e *RowConflictError) Error() string {
	return fmt.Sprintf("row %s conflicts with remote state: %s", e.RowKey, e.Reason)
}

// Retryable 判断错误是否可退避重试
func Retryable(err error) bool {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var tr *TransientError
	return errors.As(err, &tr)
}
