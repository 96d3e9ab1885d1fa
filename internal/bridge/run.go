package bridge

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/modellerbridge/internal/host"
	"github.com/danmuck/modellerbridge/internal/observability"
	"github.com/danmuck/modellerbridge/internal/params"
	"github.com/danmuck/modellerbridge/internal/protocol/wire"
)

type runMode string

const (
	modePositional runMode = "positional"
	modeNamed      runMode = "named"
)

// maxNamedParameters bounds the sent count of a named payload.
const maxNamedParameters = 1 << 16

const (
	outcomeOK             = "ok"
	outcomeNotFound       = "not_found"
	outcomeParameterError = "parameter_error"
	outcomeRuntimeError   = "runtime_error"
)

type runRequest struct {
	namespace string
	mode      runMode
	raw       string
	names     []string
	values    []string
}

// describe renders the sent parameters for logbook entries.
func (r runRequest) describe() string {
	if r.mode == modePositional {
		return r.raw
	}
	parts := make([]string, len(r.names))
	for i := range r.names {
		parts[i] = fmt.Sprintf("{%s:%s}", r.names[i], r.values[i])
	}
	return strings.Join(parts, ",")
}

// readRunRequest consumes the whole run payload before anything else happens
// so the inbound stream stays aligned whatever the outcome.
func (s *Session) readRunRequest(mode runMode) (runRequest, error) {
	req := runRequest{mode: mode}
	ns, err := s.in.ReadText()
	if err != nil {
		return req, err
	}
	req.namespace = ns

	if mode == modePositional {
		req.raw, err = s.in.ReadText()
		return req, err
	}

	countText, err := s.in.ReadText()
	if err != nil {
		return req, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(countText))
	if err != nil || count < 0 || count > maxNamedParameters {
		return req, fmt.Errorf("%w: bad parameter count %q", wire.ErrProtocolDesync, countText)
	}
	req.names = make([]string, count)
	for i := range req.names {
		if req.names[i], err = s.in.ReadText(); err != nil {
			return req, err
		}
	}
	req.values = make([]string, count)
	for i := range req.values {
		if req.values[i], err = s.in.ReadText(); err != nil {
			return req, err
		}
	}
	return req, nil
}

func (s *Session) handleRunTool(ctx context.Context, mode runMode) error {
	req, err := s.readRunRequest(mode)
	if err != nil {
		return err
	}

	s.setState(StateRunning, req.namespace)
	defer s.setState(StateAwaitingSignal, "")

	start := time.Now()
	ctx, endSpan := observability.StartToolSpan(ctx, req.namespace, string(mode))
	outcome, cause, err := s.runTool(ctx, req)
	elapsed := time.Since(start)
	endSpan(outcome, cause)
	observability.RecordToolRun(req.namespace, string(mode), outcome, elapsed)

	if s.cfg.PerformanceMode {
		s.logbook(strconv.FormatFloat(elapsed.Seconds(), 'f', -1, 64) + " seconds to execute.")
	}
	s.logger.Info().
		Str("tool", req.namespace).
		Str("mode", string(mode)).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("bridge.Session.handleRunTool finished")
	return err
}

// runTool performs one run command and sends its single terminal message.
// cause is the failure reported to the orchestrator; err is a send failure.
func (s *Session) runTool(ctx context.Context, req runRequest) (outcome string, cause error, err error) {
	if s.host == nil {
		cause = hostUnavailableError()
		return outcomeRuntimeError, cause, s.out.sendRuntimeError(FormatRuntimeError(cause))
	}

	if cause = s.waitForTool(ctx, req.namespace); cause != nil {
		return s.reportLookupFailure(req.namespace, cause)
	}
	tool, cause := s.host.ResolveTool(ctx, req.namespace)
	if cause != nil {
		return s.reportLookupFailure(req.namespace, cause)
	}

	specs, cause := tool.Parameters()
	if cause != nil {
		return s.reportParameterFailure(req, cause)
	}
	var values []params.Value
	if req.mode == modeNamed {
		values, cause = params.FromNamed(req.namespace, specs, req.names, req.values)
	} else {
		values, cause = params.FromPositional(req.namespace, specs, req.raw)
	}
	if cause != nil {
		return s.reportParameterFailure(req, cause)
	}

	args := make([]any, len(values))
	for i, v := range values {
		if cause = tool.SetParameter(v.Name, v.Typed); cause != nil {
			return s.reportRuntimeFailure(req, cause)
		}
		args[i] = v.Typed
	}
	s.logbook(fmt.Sprintf("Running %s with %s", req.namespace, params.Describe(values)))

	var reporter *progressReporter
	if q, ok := tool.(host.ProgressQuerier); ok {
		reporter = startProgressReporter(q, s.out, s.cfg.ProgressInterval)
	}
	result, cause := invokeTool(ctx, tool, args, console{out: s.out})
	reporter.Stop()
	if cause != nil {
		return s.reportRuntimeFailure(req, cause)
	}

	if result == nil {
		return outcomeOK, nil, s.out.sendRunComplete()
	}
	return outcomeOK, nil, s.out.sendRunCompleteWithValue(formatResult(result))
}

// invokeTool calls the tool and turns a panic into a ToolError.
func invokeTool(ctx context.Context, tool host.Tool, args []any, out console) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = panicError(r)
		}
	}()
	return tool.Invoke(ctx, args, out)
}

// waitForTool polls the registry until namespace is listed or the attempts
// run out. No wait follows the final attempt.
func (s *Session) waitForTool(ctx context.Context, namespace string) error {
	for attempt := 1; attempt <= s.cfg.ToolWaitAttempts; attempt++ {
		names, err := s.host.ToolNamespaces(ctx)
		if err != nil {
			return err
		}
		if slices.Contains(names, namespace) {
			return nil
		}
		if attempt == s.cfg.ToolWaitAttempts {
			break
		}
		s.logger.Debug().
			Str("tool", namespace).
			Int("attempt", attempt).
			Msg("bridge.Session.waitForTool not registered yet")
		if err := sleepContext(ctx, s.cfg.ToolWait.Delay(attempt, s.rng)); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %s", ErrToolNotFound, namespace)
}

func (s *Session) reportLookupFailure(namespace string, cause error) (string, error, error) {
	if errors.Is(cause, ErrToolNotFound) || errors.Is(cause, host.ErrToolNotRegistered) {
		s.logbook("Unable to find a tool named " + namespace)
		return outcomeNotFound, cause, s.out.sendToolDoesNotExist(toolNotFoundMessage(namespace))
	}
	return outcomeRuntimeError, cause, s.out.sendRuntimeError(FormatRuntimeError(cause))
}

func (s *Session) reportParameterFailure(req runRequest, cause error) (string, error, error) {
	s.logbook("Unable to build the parameters for the tool " + req.namespace + ": " + cause.Error())
	s.logbook("The parameter string was \r\n" + req.describe())
	return outcomeParameterError, cause, s.out.sendParameterError(cause.Error())
}

func (s *Session) reportRuntimeFailure(req runRequest, cause error) (string, error, error) {
	s.logbook("Tool " + req.namespace + " failed: " + cause.Error())
	s.logbook("Parameters : " + req.describe())
	return outcomeRuntimeError, cause, s.out.sendRuntimeError(FormatRuntimeError(cause))
}
