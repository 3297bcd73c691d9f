package logsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/appendblob"
)

type fakeBlob struct {
	mu     sync.Mutex
	blocks [][]byte
	err    error
}

func (f *fakeBlob) AppendBlock(_ context.Context, body io.ReadSeekCloser, _ *appendblob.AppendBlockOptions) (appendblob.AppendBlockResponse, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return appendblob.AppendBlockResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blocks = append(f.blocks, b)
	return appendblob.AppendBlockResponse{}, f.err
}

func (f *fakeBlob) lines(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(bytes.Join(f.blocks, nil))), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestHandlerWritesJSONLines(t *testing.T) {
	fake := &fakeBlob{}
	h := newHandler(context.Background(), fake, Config{FlushEvery: time.Hour})
	logger := slog.New(h).With("namespace", "alice")

	logger.Info("recipe added", "recipe", "Pancakes", "servings", 2)
	logger.Debug("dropped")
	logger.Warn("replay failed", "error", errors.New("boom"), slog.Group("entry", "id", "ing_egg"))

	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	lines := fake.lines(t)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}
	if lines[0]["msg"] != "recipe added" || lines[0]["recipe"] != "Pancakes" || lines[0]["namespace"] != "alice" {
		t.Errorf("unexpected first line %v", lines[0])
	}
	if lines[0]["servings"] != float64(2) {
		t.Errorf("servings = %v", lines[0]["servings"])
	}
	if lines[1]["level"] != "WARN" || lines[1]["error"] != "boom" {
		t.Errorf("unexpected second line %v", lines[1])
	}
	entry, ok := lines[1]["entry"].(map[string]any)
	if !ok || entry["id"] != "ing_egg" {
		t.Errorf("group not kept: %v", lines[1]["entry"])
	}
}

func TestHandleAfterClose(t *testing.T) {
	h := newHandler(context.Background(), &fakeBlob{}, Config{})
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "late", 0))
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("got %v, want ErrClosed", err)
	}
}

func TestCloseReportsAppendErrors(t *testing.T) {
	fake := &fakeBlob{err: errors.New("throttled")}
	h := newHandler(context.Background(), fake, Config{FlushEvery: time.Hour})
	slog.New(h).Info("hello")
	if err := h.Close(); err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Fatalf("got %v, want throttled error", err)
	}
}

func TestTee(t *testing.T) {
	var text bytes.Buffer
	fake := &fakeBlob{}
	blob := newHandler(context.Background(), fake, Config{FlushEvery: time.Hour, Level: slog.LevelWarn})
	logger := slog.New(Tee(slog.NewTextHandler(&text, nil), blob))

	logger.Info("only text")
	logger.Warn("both")
	if err := blob.Close(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(text.String(), "only text") || !strings.Contains(text.String(), "both") {
		t.Errorf("text handler missed records: %s", text.String())
	}
	lines := fake.lines(t)
	if len(lines) != 1 || lines[0]["msg"] != "both" {
		t.Errorf("blob got %v", lines)
	}
}

func TestBlobName(t *testing.T) {
	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	if got := BlobName(now, "alice"); got != "2026/03/07/alice.jsonl" {
		t.Errorf("got %q", got)
	}
	if got := BlobName(now, ""); got != "2026/03/07/default.jsonl" {
		t.Errorf("got %q", got)
	}
}

func TestConfigEnabled(t *testing.T) {
	if (Config{AccountName: "a", AccountKey: "k"}).Enabled() {
		t.Error("enabled without container")
	}
	if !(Config{AccountName: "a", AccountKey: "k", Container: "logs"}).Enabled() {
		t.Error("not enabled with all fields")
	}
}
