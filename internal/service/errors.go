package service

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidInput оборачивает ошибки валидации пользовательского ввода
var ErrInvalidInput = errors.New("invalid input")

// withTimeout ограничивает операцию с хранилищем; d <= 0 отключает ограничение
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
