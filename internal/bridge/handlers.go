package bridge

import (
	"context"
	"slices"
	"strings"

	"github.com/danmuck/modellerbridge/internal/host"
	"github.com/danmuck/modellerbridge/internal/protocol"
)

func (s *Session) handleCleanLogbook(ctx context.Context) error {
	if s.host == nil {
		return s.out.sendRuntimeError(FormatRuntimeError(hostUnavailableError()))
	}
	if err := s.host.PurgeRunHistory(ctx); err != nil {
		s.logger.Error().Err(err).Msg("bridge.Session.handleCleanLogbook purge failed")
		return s.out.sendRuntimeError(err.Error())
	}
	return s.out.sendRunComplete()
}

func (s *Session) handleCheckToolExists(ctx context.Context) error {
	namespace, err := s.in.ReadText()
	if err != nil {
		return err
	}
	if s.host == nil {
		return s.out.sendRuntimeError(FormatRuntimeError(hostUnavailableError()))
	}
	names, err := s.host.ToolNamespaces(ctx)
	if err != nil {
		return s.out.sendRuntimeError(FormatRuntimeError(err))
	}
	found := slices.Contains(names, namespace)
	if !found {
		s.logbook("Unable to find a tool named " + namespace)
	}
	return s.out.sendRunCompleteWithValue(formatBool(found))
}

// handleDisableLogbook saves the current level once; a second disable keeps
// the level saved by the first.
func (s *Session) handleDisableLogbook() {
	if s.host == nil {
		return
	}
	if !s.hasSavedLevel {
		s.savedLevel = s.host.LogbookLevel()
		s.hasSavedLevel = true
	}
	s.host.SetLogbookLevel(host.LogbookNone)
}

func (s *Session) handleEnableLogbook() {
	if s.host == nil || !s.hasSavedLevel {
		return
	}
	s.host.SetLogbookLevel(s.savedLevel)
	s.hasSavedLevel = false
}

func (s *Session) handleCheckForMissingTools(ctx context.Context) error {
	if s.host == nil {
		return s.out.sendRuntimeError(FormatRuntimeError(hostUnavailableError()))
	}
	missing, err := s.host.MissingTools(ctx)
	if err != nil {
		return s.out.sendRuntimeError(FormatRuntimeError(err))
	}
	if len(missing) == 0 {
		return s.out.sendRunComplete()
	}
	return s.out.sendToolDoesNotExist(strings.Join(missing, "\n"))
}

// handleUnknownSignal answers with a best-effort Terminate. The send error is
// dropped since the session ends either way.
func (s *Session) handleUnknownSignal(sig protocol.Signal) {
	s.logbook("Exiting on bad input " + sig.InboundName())
	s.logger.Error().Int32("code", int32(sig)).Msg("bridge.Session.handleUnknownSignal terminating")
	if err := s.out.sendTerminate(); err != nil {
		s.logger.Debug().Err(err).Msg("bridge.Session.handleUnknownSignal terminate not delivered")
	}
}
