package bridge

import (
	"fmt"
	"io"
	"sync"

	"github.com/danmuck/modellerbridge/internal/observability"
	"github.com/danmuck/modellerbridge/internal/protocol"
	"github.com/danmuck/modellerbridge/internal/protocol/wire"
)

// outbound serializes whole messages onto the orchestrator stream. The lock
// is held for signal, payload and flush.
type outbound struct {
	mu sync.Mutex
	w  *wire.Writer
}

func newOutbound(w io.Writer, enc wire.Encoding) *outbound {
	return &outbound{w: wire.NewWriter(w, enc)}
}

func (o *outbound) send(sig protocol.Signal, payload func(w *wire.Writer) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.w.WriteInt32(int32(sig)); err != nil {
		return fmt.Errorf("bridge: write %s: %w", sig.OutboundName(), err)
	}
	if payload != nil {
		if err := payload(o.w); err != nil {
			return fmt.Errorf("bridge: write %s payload: %w", sig.OutboundName(), err)
		}
	}
	if err := o.w.Flush(); err != nil {
		return fmt.Errorf("bridge: flush %s: %w", sig.OutboundName(), err)
	}
	observability.RecordSignalSent(sig.OutboundName())
	return nil
}

func (o *outbound) sendText(sig protocol.Signal, text string) error {
	return o.send(sig, func(w *wire.Writer) error {
		return w.WriteText(text)
	})
}

func (o *outbound) sendStart() error {
	return o.send(protocol.SignalStart, nil)
}

func (o *outbound) sendTerminate() error {
	return o.send(protocol.SignalTerminate, nil)
}

func (o *outbound) sendRunComplete() error {
	return o.send(protocol.SignalRunComplete, nil)
}

func (o *outbound) sendRunCompleteWithValue(text string) error {
	return o.sendText(protocol.SignalRunCompleteWithValue, text)
}

func (o *outbound) sendParameterError(text string) error {
	return o.sendText(protocol.SignalParameterError, text)
}

func (o *outbound) sendRuntimeError(text string) error {
	return o.sendText(protocol.SignalRuntimeError, text)
}

func (o *outbound) sendToolDoesNotExist(text string) error {
	return o.sendText(protocol.SignalToolDoesNotExist, text)
}

func (o *outbound) sendPrintMessage(text string) error {
	return o.sendText(protocol.SignalPrintMessage, text)
}

func (o *outbound) sendProgress(fraction float32) error {
	return o.send(protocol.SignalProgressReport, func(w *wire.Writer) error {
		return w.WriteFloat32(fraction)
	})
}
