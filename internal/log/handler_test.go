package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	ctxlog "github.com/ErlanBelekov/social-discovery/internal/log"
	"github.com/ErlanBelekov/social-discovery/internal/reqctx"
)

func TestContextHandler_AddsIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ctxlog.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := reqctx.WithClientID(reqctx.WithRequestID(context.Background(), "req-1"), "client-1")
	logger.InfoContext(ctx, "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["request_id"] != "req-1" {
		t.Errorf("request_id = %v", rec["request_id"])
	}
	if rec["client_id"] != "client-1" {
		t.Errorf("client_id = %v", rec["client_id"])
	}
}

func TestContextHandler_OmitsMissingIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ctxlog.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	logger.With("component", "test").InfoContext(context.Background(), "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if _, ok := rec["request_id"]; ok {
		t.Error("request_id present without one in context")
	}
	if rec["component"] != "test" {
		t.Errorf("component = %v", rec["component"])
	}
}

func TestContextHandler_ClientIDNotDuplicated(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ctxlog.NewContextHandler(slog.NewJSONHandler(&buf, nil))).With("client_id", "bound")

	ctx := reqctx.WithClientID(reqctx.WithRequestID(context.Background(), "req-1"), "from-ctx")
	logger.InfoContext(ctx, "hello")

	if n := bytes.Count(buf.Bytes(), []byte(`"client_id"`)); n != 1 {
		t.Fatalf("client_id appears %d times in %s", n, buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["client_id"] != "bound" || rec["request_id"] != "req-1" {
		t.Errorf("record = %v", rec)
	}
}
