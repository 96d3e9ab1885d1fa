package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danmuck/modellerbridge/internal/host"
	"github.com/danmuck/modellerbridge/internal/observability"
	"github.com/danmuck/modellerbridge/internal/protocol"
	"github.com/danmuck/modellerbridge/internal/protocol/wire"
)

// ErrUnknownSignal ends a session that received a code it does not handle.
var ErrUnknownSignal = errors.New("bridge: unknown signal")

type State string

const (
	StateStarting       State = "starting"
	StateAwaitingSignal State = "awaiting_signal"
	StateRunning        State = "running"
	StateTerminated     State = "terminated"
)

// Session is one orchestrator connection: the inbound reader, the outbound
// writer and the host session the commands act on.
type Session struct {
	id     string
	cfg    Config
	in     *wire.Reader
	out    *outbound
	host   host.Session
	rng    *rand.Rand
	logger zerolog.Logger

	// saved by DisableLogbook, restored by EnableLogbook
	savedLevel    host.LogbookLevel
	hasSavedLevel bool

	startedAt time.Time
	handled   atomic.Uint64

	mu          sync.RWMutex
	state       State
	currentTool string
}

// NewSession wires a session over the two streams. h may be nil when the host
// failed to start; host-dependent commands then answer RuntimeError.
func NewSession(in io.Reader, out io.Writer, h host.Session, cfg Config) *Session {
	cfg = cfg.WithDefaults()
	id := uuid.NewString()
	return &Session{
		id:        id,
		cfg:       cfg,
		in:        wire.NewReader(in, cfg.TextEncoding, cfg.Limits),
		out:       newOutbound(out, cfg.TextEncoding),
		host:      h,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:    observability.ComponentLogger("bridge").With().Str("session", id).Logger(),
		startedAt: time.Now().UTC(),
		state:     StateStarting,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Status implements observability.StatusProvider.
func (s *Session) Status() observability.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return observability.Status{
		SessionID:       s.id,
		State:           string(s.state),
		CurrentTool:     s.currentTool,
		CommandsHandled: s.handled.Load(),
		HostReady:       s.host != nil,
		StartedAt:       s.startedAt,
	}
}

func (s *Session) setState(state State, tool string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateTerminated {
		return
	}
	s.state = state
	s.currentTool = tool
}

// ReportStartupError tells the orchestrator the host could not be opened. It
// must be called before Run.
func (s *Session) ReportStartupError(err error) error {
	s.logger.Error().Err(err).Msg("bridge.Session.ReportStartupError host start failed")
	return s.out.sendRuntimeError(FormatRuntimeError(err))
}

// Run sends Start and serves signals until Terminate, an unknown signal or
// the end of the inbound stream. A closed inbound stream is a normal end and
// returns nil.
func (s *Session) Run(ctx context.Context) error {
	if s.host != nil {
		s.host.LogbookWrite("Activated modeller bridge session " + s.id)
		if s.cfg.PerformanceMode {
			s.host.LogbookWrite("Performance Testing Activated")
		}
	}
	if err := s.out.sendStart(); err != nil {
		s.setState(StateTerminated, "")
		return err
	}
	s.setState(StateAwaitingSignal, "")
	s.logger.Info().Msg("bridge.Session.Run started")

	for {
		if err := ctx.Err(); err != nil {
			s.setState(StateTerminated, "")
			return err
		}
		code, err := s.in.ReadInt32()
		if err != nil {
			return s.finish(err)
		}
		sig := protocol.Signal(code)
		observability.RecordSignalReceived(sig.InboundName())
		s.logger.Debug().Str("signal", sig.InboundName()).Msg("bridge.Session.Run signal")

		stop, err := s.dispatch(ctx, sig)
		s.handled.Add(1)
		if err != nil {
			return s.finish(err)
		}
		if stop {
			s.setState(StateTerminated, "")
			s.logger.Info().Str("signal", sig.InboundName()).Msg("bridge.Session.Run terminated")
			if !sig.IsInbound() {
				return fmt.Errorf("%w: %d", ErrUnknownSignal, code)
			}
			return nil
		}
	}
}

func (s *Session) finish(err error) error {
	s.setState(StateTerminated, "")
	if errors.Is(err, wire.ErrStreamClosed) {
		s.logger.Info().Msg("bridge.Session.Run inbound stream closed")
		return nil
	}
	s.logger.Error().Err(err).Msg("bridge.Session.Run stopped")
	return err
}
