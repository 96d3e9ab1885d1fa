package local

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/modellerbridge/internal/host"
	"github.com/danmuck/modellerbridge/internal/params"
)

const (
	progressPrefix = "##progress"
	resultPrefix   = "##result"
)

// Tool runs one manifest as a child process.
type Tool struct {
	manifest Manifest
	runner   CommandRunner
	dir      string
	env      []string

	mu          sync.Mutex
	values      map[string]string
	progress    host.ProgressSample
	hasProgress bool
}

func newTool(m Manifest, runner CommandRunner, dir string, env []string) *Tool {
	return &Tool{
		manifest: m,
		runner:   runner,
		dir:      dir,
		env:      env,
		values:   make(map[string]string),
	}
}

func (t *Tool) Namespace() string {
	return t.manifest.Namespace
}

func (t *Tool) Parameters() ([]params.Spec, error) {
	return t.manifest.Specs(), nil
}

func (t *Tool) SetParameter(name string, value any) error {
	for _, p := range t.manifest.Parameters {
		if p.Name == name {
			t.mu.Lock()
			t.values[name] = formatArg(value)
			t.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("local: tool %s has no parameter %q", t.manifest.Namespace, name)
}

// Progress returns the last ##progress sample, or host.ErrNoProgress before
// the tool printed one.
func (t *Tool) Progress() (host.ProgressSample, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasProgress {
		return host.ProgressSample{}, host.ErrNoProgress
	}
	return t.progress, nil
}

// Invoke launches the tool process with every bound parameter as a
// --name=value flag, in declared order.
func (t *Tool) Invoke(ctx context.Context, _ []any, console io.Writer) (any, error) {
	spec := CommandSpec{
		Name: t.manifest.Command,
		Args: append(append([]string(nil), t.manifest.Args...), t.manifest.ScriptPath()),
		Dir:  t.dir,
		Env:  t.env,
	}
	t.mu.Lock()
	for _, p := range t.manifest.Parameters {
		if v, ok := t.values[p.Name]; ok {
			spec.Args = append(spec.Args, "--"+p.Name+"="+v)
		}
	}
	t.mu.Unlock()

	var result any
	onLine := func(line string) {
		switch {
		case strings.HasPrefix(line, progressPrefix+" "):
			t.updateProgress(strings.TrimPrefix(line, progressPrefix+" "))
		case line == resultPrefix || strings.HasPrefix(line, resultPrefix+" "):
			result = strings.TrimPrefix(strings.TrimPrefix(line, resultPrefix), " ")
		default:
			if _, err := io.WriteString(console, line+"\n"); err != nil {
				log.Debug().Err(err).Str("tool", t.manifest.Namespace).Msg("local.Tool.Invoke console write failed")
			}
		}
	}

	tail, code, err := t.runner.Run(ctx, spec, onLine)
	if err != nil || code != 0 {
		return nil, processError(t.manifest, code, tail, err)
	}
	return result, nil
}

// updateProgress parses "<current> <low> <high>". Malformed lines are
// ignored.
func (t *Tool) updateProgress(raw string) {
	fields := strings.Fields(raw)
	if len(fields) != 3 {
		return
	}
	var vals [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return
		}
		vals[i] = v
	}
	t.mu.Lock()
	t.progress = host.ProgressSample{Current: vals[0], Low: vals[1], High: vals[2]}
	t.hasProgress = true
	t.mu.Unlock()
}

func processError(m Manifest, code int32, stderrTail string, err error) *host.ToolError {
	typ := "ToolProcessError"
	msg := fmt.Sprintf("%s exited with status %d", m.Namespace, code)
	if code == 127 {
		typ = "ToolLaunchError"
		msg = fmt.Sprintf("%s could not start %q", m.Namespace, m.Command)
	}
	if tail := strings.TrimSpace(stderrTail); tail != "" {
		msg += ": " + tail
	}
	return &host.ToolError{
		Type:    typ,
		Message: msg,
		Frames:  []host.Frame{{File: m.ScriptPath(), Line: 0, Function: m.Namespace}},
		Err:     err,
	}
}

func formatArg(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
