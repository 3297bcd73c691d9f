// Package logsink ships slog records as JSON lines to an Azure append blob.
package logsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/appendblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

var ErrClosed = errors.New("log sink closed")

type Config struct {
	AccountName string
	AccountKey  string
	Container   string
	BlobName    string        // see BlobName
	FlushEvery  time.Duration // default 2s
	Level       slog.Leveler
}

func (c Config) Enabled() bool {
	return c.AccountName != "" && c.AccountKey != "" && c.Container != ""
}

// BlobName groups logs by day and namespace: YYYY/MM/DD/<namespace>.jsonl.
func BlobName(now time.Time, namespace string) string {
	if namespace == "" {
		namespace = "default"
	}
	return fmt.Sprintf("%d/%02d/%02d/%s.jsonl", now.Year(), int(now.Month()), now.Day(), namespace)
}

type appender interface {
	AppendBlock(ctx context.Context, body io.ReadSeekCloser, o *appendblob.AppendBlockOptions) (appendblob.AppendBlockResponse, error)
}

type Handler struct {
	level slog.Leveler
	attrs []slog.Attr
	sink  *sink
}

// sink is shared by a handler and everything derived from it via WithAttrs.
type sink struct {
	ab     appender
	ch     chan []byte
	cancel context.CancelFunc
	ctx    context.Context
	wg     sync.WaitGroup
	ticker *time.Ticker
	mu     sync.RWMutex
	closed bool
	err    error // append failures, reported by Close
}

// New creates the day's append blob if needed and starts the flush loop.
func New(ctx context.Context, cfg Config) (*Handler, error) {
	if !cfg.Enabled() {
		return nil, errors.New("logsink needs an account name, key and container")
	}
	if cfg.BlobName == "" {
		cfg.BlobName = BlobName(time.Now(), "")
	}

	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, err
	}
	// BlobName may include slashes; don't path-escape it.
	blobURL := "https://" + cfg.AccountName + ".blob.core.windows.net/" + url.PathEscape(cfg.Container) + "/" + cfg.BlobName
	ab, err := appendblob.NewClientWithSharedKeyCredential(blobURL, cred, nil)
	if err != nil {
		return nil, err
	}

	_, err = ab.Create(ctx, &appendblob.CreateOptions{
		AccessConditions: &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{IfNoneMatch: to.Ptr(azcore.ETagAny)},
		},
	})
	if err != nil && !bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ConditionNotMet) {
		return nil, fmt.Errorf("create log blob %s: %w", cfg.BlobName, err)
	}
	return newHandler(ctx, ab, cfg), nil
}

func newHandler(ctx context.Context, ab appender, cfg Config) *Handler {
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 2 * time.Second
	}
	level := cfg.Level
	if level == nil {
		level = slog.LevelInfo
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &sink{
		ab:     ab,
		ch:     make(chan []byte, 1024),
		ctx:    ctx,
		cancel: cancel,
		ticker: time.NewTicker(cfg.FlushEvery),
	}
	s.wg.Add(1)
	go s.loop()
	return &Handler{level: level, sink: s}
}

// Close flushes buffered records and stops the loop.
func (h *Handler) Close() error {
	s := h.sink
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.err
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	s.wg.Wait()
	s.ticker.Stop()
	s.cancel()
	return s.err
}

func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	ev := make(map[string]any, r.NumAttrs()+len(h.attrs)+3)
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	ev["ts"] = ts.UTC().Format(time.RFC3339Nano)
	ev["level"] = r.Level.String()
	ev["msg"] = r.Message

	add := func(a slog.Attr) bool {
		a.Value = a.Value.Resolve()
		if a.Value.Kind() == slog.KindGroup {
			m := map[string]any{}
			// one level deep
			for _, aa := range a.Value.Group() {
				m[aa.Key] = aa.Value.Resolve().Any()
			}
			ev[a.Key] = m
			return true
		}
		if err, ok := a.Value.Any().(error); ok {
			ev[a.Key] = err.Error()
			return true
		}
		ev[a.Key] = a.Value.Any()
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(add)

	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ev); err != nil {
		return err
	}

	h.sink.mu.RLock()
	defer h.sink.mu.RUnlock()
	if h.sink.closed {
		return ErrClosed
	}
	select {
	case h.sink.ch <- b.Bytes():
		return nil
	case <-h.sink.ctx.Done():
		return h.sink.ctx.Err()
	}
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		level: h.level,
		attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...),
		sink:  h.sink,
	}
}

// Groups are flattened.
func (h *Handler) WithGroup(string) slog.Handler { return h }

func (s *sink) loop() {
	defer s.wg.Done()
	var buf []byte
	flush := func() {
		if len(buf) == 0 {
			return
		}
		// the default logger may be this handler, so errors are kept rather than logged
		ctx := context.WithoutCancel(s.ctx)
		if _, err := s.ab.AppendBlock(ctx, readSeekNopCloser{bytes.NewReader(buf)}, nil); err != nil {
			s.err = errors.Join(s.err, fmt.Errorf("append log block: %w", err))
		}
		buf = buf[:0]
	}

	for {
		select {
		case <-s.ctx.Done():
			flush()
			return
		case line, ok := <-s.ch:
			if !ok {
				flush()
				return
			}
			buf = append(buf, line...)
		case <-s.ticker.C:
			flush()
		}
	}
}

type readSeekNopCloser struct{ io.ReadSeeker }

func (r readSeekNopCloser) Close() error { return nil }
