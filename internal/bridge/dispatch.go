package bridge

import (
	"context"

	"github.com/danmuck/modellerbridge/internal/protocol"
)

// dispatch routes one inbound signal. stop reports that the session is over;
// a non-nil error means a stream failure.
func (s *Session) dispatch(ctx context.Context, sig protocol.Signal) (stop bool, err error) {
	switch sig {
	case protocol.SignalTerminate:
		s.logbook("Exiting on termination signal from orchestrator")
		return true, nil
	case protocol.SignalStartModule:
		return false, s.handleRunTool(ctx, modePositional)
	case protocol.SignalStartModuleBinaryParameters:
		return false, s.handleRunTool(ctx, modeNamed)
	case protocol.SignalCleanLogbook:
		return false, s.handleCleanLogbook(ctx)
	case protocol.SignalCheckToolExists:
		return false, s.handleCheckToolExists(ctx)
	case protocol.SignalDisableLogbook:
		s.handleDisableLogbook()
		return false, nil
	case protocol.SignalEnableLogbook:
		s.handleEnableLogbook()
		return false, nil
	case protocol.SignalCheckForMissingTools:
		return false, s.handleCheckForMissingTools(ctx)
	default:
		s.handleUnknownSignal(sig)
		return true, nil
	}
}

func (s *Session) logbook(message string) {
	if s.host != nil {
		s.host.LogbookWrite(message)
	}
}
