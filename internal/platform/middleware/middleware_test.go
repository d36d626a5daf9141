package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medtrace/medtrace/internal/platform/ledger"
)

func TestRequestID_GeneratesNew(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		rid := c.Get("request_id").(string)
		if rid == "" {
			t.Error("expected request_id to be generated")
		}
		return c.String(http.StatusOK, "ok")
	}

	mw := RequestID()
	h := mw(handler)
	err := h(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "my-custom-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		rid := c.Get("request_id").(string)
		if rid != "my-custom-id" {
			t.Errorf("expected my-custom-id, got %s", rid)
		}
		return c.String(http.StatusOK, "ok")
	}

	mw := RequestID()
	h := mw(handler)
	h(c)

	if rec.Header().Get(RequestIDHeader) != "my-custom-id" {
		t.Errorf("expected my-custom-id in response header, got %s", rec.Header().Get(RequestIDHeader))
	}
}

func TestTxTime_StampsRequest(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/medicines", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var first, second string
	handler := func(c echo.Context) error {
		ctx := c.Request().Context()
		first = ledger.TxTime(ctx).Format("2006-01-02T15:04:05.000000000Z")
		second = ledger.TxTime(ctx).Format("2006-01-02T15:04:05.000000000Z")
		return c.NoContent(http.StatusOK)
	}

	mw := TxTime()
	h := mw(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == "" {
		t.Fatal("expected transaction time to be set")
	}
	if first != second {
		t.Errorf("expected stable transaction time within a request, got %s then %s", first, second)
	}
}

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Logger()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := Logger(logger)
	h := mw(handler)
	err := h(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line := buf.String()
	if !strings.Contains(line, `"level":"info"`) {
		t.Errorf("expected info line for 200, got %s", line)
	}
	if !strings.Contains(line, `"path":"/test"`) || !strings.Contains(line, `"status":200`) {
		t.Errorf("expected path and status fields, got %s", line)
	}
}

func TestLogger_SeverityFollowsStatusClass(t *testing.T) {
	run := func(h echo.HandlerFunc) string {
		var buf bytes.Buffer
		logger := zerolog.New(&buf).With().Logger()
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := Logger(logger)(h)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return buf.String()
	}

	if line := run(func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	}); !strings.Contains(line, `"level":"warn"`) {
		t.Errorf("expected warn line for 404, got %s", line)
	}

	if line := run(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusInternalServerError, "boom")
	}); !strings.Contains(line, `"level":"error"`) {
		t.Errorf("expected error line for failing handler, got %s", line)
	}
}

func TestLogger_ResolvesHandlerErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Logger()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusConflict, "duplicate")
	}
	if err := Logger(logger)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 written to the client, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), `"status":409`) {
		t.Errorf("expected logged status 409, got %s", buf.String())
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Logger()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		panic("test panic")
	}

	mw := Recovery(logger)
	h := mw(handler)
	err := h(c)

	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
	line := buf.String()
	if !strings.Contains(line, `"panic":"test panic"`) {
		t.Errorf("expected panic value logged, got %s", line)
	}
	if !strings.Contains(line, `"stack"`) || !strings.Contains(line, `"path":"/panic"`) {
		t.Errorf("expected stack and request context logged, got %s", line)
	}
}

func TestRecovery_RethrowsAbortHandler(t *testing.T) {
	logger := zerolog.New(os.Stderr).With().Logger()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/abort", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		panic(http.ErrAbortHandler)
	}

	defer func() {
		if r := recover(); r != http.ErrAbortHandler {
			t.Errorf("expected http.ErrAbortHandler to propagate, got %v", r)
		}
	}()
	Recovery(logger)(handler)(c)
}

func TestRecovery_PassesThrough(t *testing.T) {
	logger := zerolog.New(os.Stderr).With().Logger()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := Recovery(logger)
	h := mw(handler)
	err := h(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
