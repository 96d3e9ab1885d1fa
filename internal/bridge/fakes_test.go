package bridge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/modellerbridge/internal/host"
	"github.com/danmuck/modellerbridge/internal/params"
	"github.com/danmuck/modellerbridge/internal/protocol"
	"github.com/danmuck/modellerbridge/internal/protocol/wire"
)

type fakeHost struct {
	mu          sync.Mutex
	tools       map[string]host.Tool
	hiddenPolls int
	polls       int
	level       host.LogbookLevel
	entries     []string
	purged      int
	purgeErr    error
	missing     []string
}

func newFakeHost(tools ...host.Tool) *fakeHost {
	h := &fakeHost{tools: make(map[string]host.Tool), level: host.LogbookStandard}
	for _, tool := range tools {
		h.tools[tool.Namespace()] = tool
	}
	return h
}

func (h *fakeHost) ToolNamespaces(context.Context) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.polls++
	if h.polls <= h.hiddenPolls {
		return nil, nil
	}
	out := make([]string, 0, len(h.tools))
	for ns := range h.tools {
		out = append(out, ns)
	}
	return out, nil
}

func (h *fakeHost) ResolveTool(_ context.Context, namespace string) (host.Tool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	tool, ok := h.tools[namespace]
	if !ok {
		return nil, host.ErrToolNotRegistered
	}
	return tool, nil
}

func (h *fakeHost) PurgeRunHistory(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.purgeErr != nil {
		return h.purgeErr
	}
	h.purged++
	h.entries = nil
	return nil
}

func (h *fakeHost) LogbookLevel() host.LogbookLevel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.level
}

func (h *fakeHost) SetLogbookLevel(level host.LogbookLevel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.level = level
}

func (h *fakeHost) LogbookWrite(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, message)
}

func (h *fakeHost) MissingTools(context.Context) ([]string, error) {
	return h.missing, nil
}

func (h *fakeHost) Close() error {
	return nil
}

func (h *fakeHost) hasEntry(substr string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

type fakeTool struct {
	namespace string
	specs     []params.Spec
	invoke    func(ctx context.Context, args []any, console io.Writer) (any, error)

	mu  sync.Mutex
	set map[string]any
}

func newFakeTool(namespace string, specs []params.Spec, invoke func(context.Context, []any, io.Writer) (any, error)) *fakeTool {
	return &fakeTool{namespace: namespace, specs: specs, invoke: invoke, set: make(map[string]any)}
}

func (t *fakeTool) Namespace() string {
	return t.namespace
}

func (t *fakeTool) Parameters() ([]params.Spec, error) {
	return t.specs, nil
}

func (t *fakeTool) SetParameter(name string, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.set[name] = value
	return nil
}

func (t *fakeTool) Invoke(ctx context.Context, args []any, console io.Writer) (any, error) {
	if t.invoke == nil {
		return nil, nil
	}
	return t.invoke(ctx, args, console)
}

func (t *fakeTool) bound(name string) any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.set[name]
}

type progressTool struct {
	*fakeTool
	progress func() (host.ProgressSample, error)
}

func (t *progressTool) Progress() (host.ProgressSample, error) {
	return t.progress()
}

type message struct {
	sig      protocol.Signal
	text     string
	fraction float32
}

func hasTextPayload(sig protocol.Signal) bool {
	switch sig {
	case protocol.SignalParameterError,
		protocol.SignalRuntimeError,
		protocol.SignalRunCompleteWithValue,
		protocol.SignalToolDoesNotExist,
		protocol.SignalPrintMessage:
		return true
	default:
		return false
	}
}

func decodeMessages(t *testing.T, data []byte) []message {
	t.Helper()
	r := wire.NewReader(bytes.NewReader(data), wire.EncodingUTF8, wire.DefaultLimits())
	var out []message
	for {
		code, err := r.ReadInt32()
		if errors.Is(err, wire.ErrStreamClosed) {
			return out
		}
		if err != nil {
			t.Fatalf("decode signal: %v", err)
		}
		m := message{sig: protocol.Signal(code)}
		switch {
		case hasTextPayload(m.sig):
			if m.text, err = r.ReadText(); err != nil {
				t.Fatalf("decode text for %s: %v", m.sig.OutboundName(), err)
			}
		case m.sig == protocol.SignalProgressReport:
			if m.fraction, err = r.ReadFloat32(); err != nil {
				t.Fatalf("decode progress: %v", err)
			}
		}
		out = append(out, m)
	}
}

func encodeInbound(t *testing.T, build func(w *inboundWriter)) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	w := &inboundWriter{t: t, w: wire.NewWriter(&buf, wire.EncodingUTF8)}
	build(w)
	if err := w.w.Flush(); err != nil {
		t.Fatalf("flush inbound: %v", err)
	}
	return &buf
}

type inboundWriter struct {
	t *testing.T
	w *wire.Writer
}

func (w *inboundWriter) signal(sig protocol.Signal) {
	if err := w.w.WriteInt32(int32(sig)); err != nil {
		w.t.Fatalf("write signal: %v", err)
	}
}

func (w *inboundWriter) text(values ...string) {
	for _, v := range values {
		if err := w.w.WriteText(v); err != nil {
			w.t.Fatalf("write text: %v", err)
		}
	}
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.ToolWaitAttempts = 3
	cfg.ToolWait = BackoffConfig{InitialDelay: time.Millisecond, Multiplier: 1}
	cfg.ProgressInterval = time.Millisecond
	return cfg
}

func runSession(t *testing.T, h host.Session, cfg Config, build func(w *inboundWriter)) ([]message, error) {
	t.Helper()
	in := encodeInbound(t, build)
	var out bytes.Buffer
	s := NewSession(in, &out, h, cfg)
	err := s.Run(context.Background())
	if s.State() != StateTerminated {
		t.Fatalf("expected terminated state, got %s", s.State())
	}
	return decodeMessages(t, out.Bytes()), err
}

func signals(msgs []message) []protocol.Signal {
	out := make([]protocol.Signal, len(msgs))
	for i, m := range msgs {
		out[i] = m.sig
	}
	return out
}

func expectSignals(t *testing.T, msgs []message, want ...protocol.Signal) {
	t.Helper()
	got := signals(msgs)
	if len(got) != len(want) {
		t.Fatalf("unexpected signals: got=%v want=%v (%+v)", got, want, msgs)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected signal %d: got=%v want=%v (%+v)", i, got, want, msgs)
		}
	}
}
