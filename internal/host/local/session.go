package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/modellerbridge/internal/host"
	"github.com/danmuck/modellerbridge/internal/host/logbook"
)

// DatabankEnv names the environment variable holding the active data bank
// directory of a tool process.
const DatabankEnv = "MODELLER_DATABANK"

// Opener opens sessions over project files.
type Opener struct {
	// Runner defaults to ExecRunner.
	Runner CommandRunner
	// ToolboxRoot overrides the project's toolbox directory when set.
	ToolboxRoot string
}

// Open loads the project and its logbook. An unknown data bank still
// returns a usable session together with the error.
func (o Opener) Open(ctx context.Context, opts host.OpenOptions) (host.Session, error) {
	project, err := LoadProject(opts.Project)
	if err != nil {
		return nil, err
	}
	if o.ToolboxRoot != "" {
		project.Toolbox = project.resolve(o.ToolboxRoot)
	}
	runner := o.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	book, err := logbook.Open(project.Logbook)
	if err != nil {
		return nil, err
	}
	s := &Session{
		project:  project,
		runner:   runner,
		initials: opts.UserInitials,
		book:     book,
		workDir:  project.Dir,
	}
	s.LogbookWrite(fmt.Sprintf("Session opened for project %s by %s", project.Name, opts.UserInitials))

	if name := strings.TrimSpace(opts.Databank); name != "" {
		if err := s.SwitchDatabank(name); err != nil {
			return s, err
		}
	}
	log.Info().
		Str("project", project.Name).
		Str("toolbox", project.Toolbox).
		Str("databank", s.databank).
		Msg("local.Opener.Open session ready")
	return s, nil
}

// Session is an open local project.
type Session struct {
	project  Project
	runner   CommandRunner
	initials string

	mu       sync.Mutex
	book     *logbook.Store
	workDir  string
	databank string
}

// SwitchDatabank makes the named data bank the working directory of later
// tool runs.
func (s *Session) SwitchDatabank(name string) error {
	db, ok := s.project.Databank(name)
	if !ok {
		return &host.ToolError{
			Type:    "DatabankError",
			Message: fmt.Sprintf("The databank %s does not exist!", strings.ToLower(name)),
			Err:     host.ErrUnknownDatabank,
		}
	}
	if err := os.MkdirAll(db.Path, 0o755); err != nil {
		return fmt.Errorf("local: prepare databank %s: %w", db.Name, err)
	}
	s.mu.Lock()
	s.workDir = db.Path
	s.databank = db.Name
	s.mu.Unlock()
	s.LogbookWrite("Switched to databank " + db.Name)
	return nil
}

func (s *Session) registry() (*Registry, error) {
	return ScanToolbox(s.project.Toolbox)
}

// ToolNamespaces rescans the toolbox so tools added while the session is
// open become visible.
func (s *Session) ToolNamespaces(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := s.registry()
	if err != nil {
		return nil, err
	}
	return r.Namespaces(), nil
}

func (s *Session) ResolveTool(ctx context.Context, namespace string) (host.Tool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := s.registry()
	if err != nil {
		return nil, err
	}
	m, ok := r.Resolve(namespace)
	if !ok {
		return nil, fmt.Errorf("%w: %s", host.ErrToolNotRegistered, namespace)
	}

	s.mu.Lock()
	dir := s.workDir
	s.mu.Unlock()
	env := append(os.Environ(), DatabankEnv+"="+dir)
	return newTool(m, s.runner, dir, env), nil
}

// PurgeRunHistory deletes the logbook file and starts a fresh logbook
// session at the same level.
func (s *Session) PurgeRunHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.book == nil {
		return host.ErrSessionUnavailable
	}
	level := s.book.Level()
	path := s.book.Path()
	removeErr := s.book.Remove()
	// the old store is closed even when removal failed
	s.book = nil
	book, err := logbook.Open(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("local.Session.PurgeRunHistory logbook unavailable")
		return errors.Join(removeErr, fmt.Errorf("local: reopen logbook: %w", err))
	}
	book.SetLevel(level)
	s.book = book
	if removeErr != nil {
		return removeErr
	}
	log.Info().Str("path", path).Msg("local.Session.PurgeRunHistory logbook restarted")
	return nil
}

func (s *Session) LogbookLevel() host.LogbookLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.book == nil {
		return host.LogbookNone
	}
	return s.book.Level()
}

func (s *Session) SetLogbookLevel(level host.LogbookLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.book != nil {
		s.book.SetLevel(level)
	}
}

func (s *Session) LogbookWrite(message string) {
	s.mu.Lock()
	book := s.book
	s.mu.Unlock()
	if book == nil {
		return
	}
	if _, err := book.Write(context.Background(), host.LogbookStandard, message); err != nil {
		log.Warn().Err(err).Msg("local.Session.LogbookWrite failed")
	}
}

// Logbook exposes the current store, for inspection.
func (s *Session) Logbook() *logbook.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book
}

// MissingTools reports manifests whose script is absent and manifests that
// failed to load.
func (s *Session) MissingTools(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := s.registry()
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, m := range r.Manifests() {
		if _, err := os.Stat(m.ScriptPath()); err != nil {
			missing = append(missing, m.Namespace+": "+m.ScriptPath())
		}
	}
	for _, p := range r.Problems() {
		missing = append(missing, p.Path+": "+p.Err.Error())
	}
	return missing, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.book == nil {
		return nil
	}
	s.writeLocked("Session closed")
	err := s.book.Close()
	s.book = nil
	return err
}

// writeLocked writes with s.mu already held.
func (s *Session) writeLocked(message string) {
	if _, err := s.book.Write(context.Background(), host.LogbookStandard, message); err != nil {
		log.Warn().Err(err).Msg("local.Session.LogbookWrite failed")
	}
}
