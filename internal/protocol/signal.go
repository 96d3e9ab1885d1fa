package protocol

import "fmt"

// Signal is the int32 opcode that starts every message on either stream.
type Signal int32

// Outbound signals, bridge -> orchestrator.
const (
	SignalStart                Signal = 0
	SignalTerminate            Signal = 1
	SignalRunComplete          Signal = 3
	SignalParameterError       Signal = 4
	SignalRuntimeError         Signal = 5
	SignalProgressReport       Signal = 7
	SignalRunCompleteWithValue Signal = 8
	SignalToolDoesNotExist     Signal = 10
	SignalPrintMessage         Signal = 11
)

// Inbound signals, orchestrator -> bridge. Terminate shares its code with the
// outbound signal of the same name.
const (
	SignalStartModule                 Signal = 2
	SignalCleanLogbook                Signal = 6
	SignalCheckToolExists             Signal = 9
	SignalDisableLogbook              Signal = 12
	SignalEnableLogbook               Signal = 13
	SignalStartModuleBinaryParameters Signal = 14
	SignalCheckForMissingTools        Signal = 15
)

var inboundNames = map[Signal]string{
	SignalTerminate:                   "terminate",
	SignalStartModule:                 "start_module",
	SignalCleanLogbook:                "clean_logbook",
	SignalCheckToolExists:             "check_tool_exists",
	SignalDisableLogbook:              "disable_logbook",
	SignalEnableLogbook:               "enable_logbook",
	SignalStartModuleBinaryParameters: "start_module_binary_parameters",
	SignalCheckForMissingTools:        "check_for_missing_tools",
}

var outboundNames = map[Signal]string{
	SignalStart:                "start",
	SignalTerminate:            "terminate",
	SignalRunComplete:          "run_complete",
	SignalParameterError:       "parameter_error",
	SignalRuntimeError:         "runtime_error",
	SignalProgressReport:       "progress_report",
	SignalRunCompleteWithValue: "run_complete_with_value",
	SignalToolDoesNotExist:     "tool_does_not_exist",
	SignalPrintMessage:         "print_message",
}

// IsInbound reports whether s is a code the orchestrator may send.
func (s Signal) IsInbound() bool {
	_, ok := inboundNames[s]
	return ok
}

// IsOutbound reports whether s is a code the bridge may send.
func (s Signal) IsOutbound() bool {
	_, ok := outboundNames[s]
	return ok
}

// InboundName is the stable label for an inbound code, "unknown(<n>)" otherwise.
func (s Signal) InboundName() string {
	if name, ok := inboundNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int32(s))
}

// OutboundName is the stable label for an outbound code, "unknown(<n>)" otherwise.
func (s Signal) OutboundName() string {
	if name, ok := outboundNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int32(s))
}
