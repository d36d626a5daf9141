package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medtrace/medtrace/internal/platform/ledger"
)

// TxTime stamps each request with a single transaction time. Every
// ledger write issued while handling the request observes the same
// instant, so event timestamps within a request are deterministic.
func TxTime() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := ledger.WithTxTime(c.Request().Context(), time.Now().UTC())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
