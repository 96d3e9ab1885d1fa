package host

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/danmuck/modellerbridge/internal/params"
)

var (
	ErrSessionUnavailable = errors.New("host: session unavailable")
	ErrToolNotRegistered  = errors.New("host: tool not registered")
	ErrUnknownDatabank    = errors.New("host: unknown databank")

	// ErrNoProgress means the tool has not reported progress yet.
	ErrNoProgress = errors.New("host: no progress reported")
)

// LogbookLevel is the run-history verbosity.
type LogbookLevel int

const (
	LogbookNone LogbookLevel = iota
	LogbookStandard
	LogbookVerbose
)

func (l LogbookLevel) String() string {
	switch l {
	case LogbookNone:
		return "none"
	case LogbookVerbose:
		return "verbose"
	default:
		return "standard"
	}
}

// ParseLogbookLevel accepts the names produced by LogbookLevel.String.
func ParseLogbookLevel(raw string) (LogbookLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "none", "off":
		return LogbookNone, true
	case "standard", "":
		return LogbookStandard, true
	case "verbose", "all":
		return LogbookVerbose, true
	default:
		return LogbookStandard, false
	}
}

// OpenOptions are the start-up arguments handed to a host session.
type OpenOptions struct {
	Project      string
	UserInitials string
	Databank     string
}

// Session is one open modelling session.
type Session interface {
	ToolNamespaces(ctx context.Context) ([]string, error)
	ResolveTool(ctx context.Context, namespace string) (Tool, error)

	// PurgeRunHistory deletes the run history and restarts the session.
	PurgeRunHistory(ctx context.Context) error

	LogbookLevel() LogbookLevel
	SetLogbookLevel(level LogbookLevel)
	LogbookWrite(message string)

	// MissingTools lists toolbox entries whose referenced script is absent.
	MissingTools(ctx context.Context) ([]string, error)

	Close() error
}

// Opener starts a session. Implementations may return a usable session
// together with a non-nil error for recoverable start-up problems such as an
// unknown databank.
type Opener interface {
	Open(ctx context.Context, opts OpenOptions) (Session, error)
}

// Tool is one resolved tool instance.
type Tool interface {
	Namespace() string
	Parameters() ([]params.Spec, error)
	SetParameter(name string, value any) error
	// Invoke runs the tool with the bound parameters. A nil result means the
	// tool returned nothing. console receives incidental tool output.
	Invoke(ctx context.Context, args []any, console io.Writer) (any, error)
}

// ProgressSample is one poll of a running tool.
type ProgressSample struct {
	Current float64
	Low     float64
	High    float64
}

// ProgressQuerier is implemented by tools that expose live progress. Progress
// returns ErrNoProgress until the tool has a sample to offer.
type ProgressQuerier interface {
	Progress() (ProgressSample, error)
}
