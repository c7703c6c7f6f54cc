package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/niklvrr/ReviewerRotation/internal/transport/dto/response"
	"go.uber.org/zap"
)

// timeoutWriter не даёт обработчику писать после того, как ответ по таймауту отправлен
type timeoutWriter struct {
	w        http.ResponseWriter
	h        http.Header
	mu       sync.Mutex
	timedOut bool
	wrote    bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.h
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.flushHeader(http.StatusOK)
	return tw.w.Write(b)
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return
	}
	tw.flushHeader(code)
}

func (tw *timeoutWriter) flushHeader(code int) {
	if tw.wrote {
		return
	}
	tw.wrote = true
	dst := tw.w.Header()
	for k, v := range tw.h {
		dst[k] = v
	}
	tw.w.WriteHeader(code)
}

// Timeout устанавливает максимальное время выполнения запроса
func Timeout(timeout time.Duration, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)
			tw := &timeoutWriter{w: w, h: make(http.Header)}

			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer close(done)
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r)
			}()

			select {
			case <-done:
				// Паника обработчика уходит в Recovery
				repanic(panicked)
				return
			case <-ctx.Done():
				tw.mu.Lock()
				if tw.wrote {
					// Ответ уже начат, дожидаемся обработчика
					tw.mu.Unlock()
					<-done
					repanic(panicked)
					return
				}
				tw.timedOut = true
				tw.mu.Unlock()

				// Контекст роутинга chi переиспользуется после ответа, поля снимаем сейчас
				log := logger.With(requestFields(r)...)
				log.Warn("request timeout", zap.Duration("timeout", timeout))
				writeError(w, http.StatusRequestTimeout, response.CodeRequestTimeout, "request timeout")

				// Ответ уже отдан, паника опоздавшего обработчика только в лог
				go func() {
					<-done
					select {
					case p := <-panicked:
						log.Error("panic after request timeout", zap.Any("panic", p))
					default:
					}
				}()
			}
		})
	}
}

func repanic(panicked <-chan any) {
	select {
	case p := <-panicked:
		panic(p)
	default:
	}
}
