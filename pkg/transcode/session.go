package transcode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dose-media/dose-stream/internal/utils"
)

// number of encoder stderr lines attached to failure reports
const stderrTailLines = 20

type CommandFactory func(binary string, args []string) *exec.Cmd

func DefaultCommandFactory(binary string, args []string) *exec.Cmd {
	return exec.Command(binary, args...)
}

type SessionConfig struct {
	FFmpegBinary   string
	TranscodeDir   string
	Settings       Settings
	CommandFactory CommandFactory

	// called when the encoder exits with an error it was not killed for
	OnFailure func(id string, err error)
}

type process struct {
	cmd    *exec.Cmd
	stderr *utils.LogWriterCtx
	done   chan struct{}
}

// SessionCtx drives one encoder subprocess at a time. Lifecycle calls are
// serialized, so a restart always waits for the previous process to exit and
// its output to be removed before the next one is spawned.
type SessionCtx struct {
	logger zerolog.Logger
	id     string
	config SessionConfig

	lifecycle sync.Mutex

	mu            sync.RWMutex
	state         State
	options       Options
	outputDir     string
	startSegment  int
	latestSegment int
	proc          *process

	stopped  chan struct{}
	stopOnce sync.Once
}

func NewSession(id string, options Options, config SessionConfig) *SessionCtx {
	if config.CommandFactory == nil {
		config.CommandFactory = DefaultCommandFactory
	}
	if config.FFmpegBinary == "" {
		config.FFmpegBinary = "ffmpeg"
	}

	return &SessionCtx{
		logger: log.With().
			Str("module", "transcode").
			Str("submodule", "session").
			Str("session", id).
			Logger(),
		id:      id,
		config:  config,
		state:   StateCreated,
		options: options,

		startSegment:  options.Segment,
		latestSegment: options.Segment,

		stopped: make(chan struct{}),
	}
}

func (s *SessionCtx) ID() string {
	return s.id
}

// Done is closed once the session has been stopped.
func (s *SessionCtx) Done() <-chan struct{} {
	return s.stopped
}

func (s *SessionCtx) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		ID:            s.id,
		State:         s.state,
		Options:       s.options,
		OutputDir:     s.outputDir,
		StartSegment:  s.startSegment,
		LatestSegment: s.latestSegment,
	}
}

func (s *SessionCtx) isStopped() bool {
	select {
	case <-s.stopped:
		return true
	default:
		return false
	}
}

// Start spawns the encoder for the options the session was created with. It
// returns as soon as the process is running.
func (s *SessionCtx) Start() error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.isStopped() {
		return ErrSessionStopped
	}

	s.mu.RLock()
	options := s.options
	running := s.proc != nil
	s.mu.RUnlock()

	if running {
		return errors.New("encoder has already started")
	}

	return s.start(options)
}

// Restart replaces the running encoder with one producing segments from
// segment onwards at the given resolution.
func (s *SessionCtx) Restart(segment int, resolution Resolution) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.isStopped() {
		return ErrSessionStopped
	}

	return s.restart(segment, resolution)
}

// restart must be called with the lifecycle lock held.
func (s *SessionCtx) restart(segment int, resolution Resolution) error {
	s.mu.Lock()
	s.state = StateRestarting
	options := s.options
	s.mu.Unlock()

	s.logger.Info().
		Int("segment", segment).
		Str("resolution", string(resolution)).
		Msg("restarting encoder")

	s.kill()

	options.Segment = segment
	options.Resolution = resolution
	return s.start(options)
}

// Stop kills the encoder and removes its output. Safe to call repeatedly.
func (s *SessionCtx) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopped)
	})

	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.kill()

	s.mu.Lock()
	if s.state != StateStopped {
		s.logger.Info().Msg("session stopped")
	}
	s.state = StateStopped
	s.mu.Unlock()
}

// start must be called with the lifecycle lock held.
func (s *SessionCtx) start(options Options) error {
	s.mu.Lock()
	s.state = StateStarting
	s.mu.Unlock()

	if err := os.MkdirAll(s.config.TranscodeDir, 0755); err != nil {
		s.setState(StateFailed)
		return fmt.Errorf("unable to create transcode dir: %w", err)
	}

	dir, err := os.MkdirTemp(s.config.TranscodeDir, "transcoding-*")
	if err != nil {
		s.setState(StateFailed)
		return fmt.Errorf("unable to create output dir: %w", err)
	}

	args := buildArgs(options, s.config.Settings, dir)

	cmd := s.config.CommandFactory(s.config.FFmpegBinary, args)
	cmd.SysProcAttr = processGroup()

	stderr := utils.LogWriter(s.logger.With().Str("source", "encoder").Logger(), stderrTailLines)
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = os.RemoveAll(dir)
		s.setState(StateFailed)
		return fmt.Errorf("unable to attach encoder output: %w", err)
	}

	if err := cmd.Start(); err != nil {
		_ = os.RemoveAll(dir)
		s.setState(StateFailed)
		return fmt.Errorf("unable to start encoder: %w", err)
	}

	proc := &process{
		cmd:    cmd,
		stderr: stderr,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.options = options
	s.outputDir = dir
	s.startSegment = options.Segment
	s.latestSegment = options.Segment
	s.proc = proc
	s.state = StateActive
	s.mu.Unlock()

	s.logger.Info().
		Int("pid", cmd.Process.Pid).
		Str("resolution", string(options.Resolution)).
		Str("codec", string(options.Codec)).
		Int("segment", options.Segment).
		Str("dir", dir).
		Msg("encoder started")

	go s.watch(proc, stdout)
	return nil
}

func (s *SessionCtx) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *SessionCtx) watch(proc *process, stdout io.Reader) {
	readProgress(stdout, func(elapsed float64) {
		s.progress(proc, elapsed)
	}, func() {
		s.logger.Debug().Msg("encoder reported end of progress")
	})

	err := proc.cmd.Wait()
	s.exited(proc, err)
}

func (s *SessionCtx) progress(proc *process, elapsed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proc != proc {
		return
	}

	segment, ok := segmentAt(s.startSegment, elapsed)
	if !ok || segment <= s.latestSegment {
		return
	}

	s.latestSegment = segment
}

func (s *SessionCtx) exited(proc *process, err error) {
	defer close(proc.done)

	proc.stderr.Flush()

	s.mu.Lock()
	current := s.proc == proc
	if current {
		s.proc = nil
		if err == nil {
			s.state = StateFinished
		} else {
			s.state = StateFailed
		}
	}
	s.mu.Unlock()

	// a process that is no longer current was killed by restart or stop
	if !current {
		s.logger.Debug().Err(err).Msg("killed encoder exited")
		return
	}

	if err == nil {
		s.logger.Info().Msg("encoder finished")
		return
	}

	event := s.logger.Error().Err(err).Str("stderr", strings.Join(proc.stderr.Tail(), "\n"))

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			event = event.Int("exit-status", status.ExitStatus())
		}
	}

	event.Msg("encoder failed")

	if s.config.OnFailure != nil {
		s.config.OnFailure(s.id, err)
	}
}

// kill must be called with the lifecycle lock held. It waits for the process
// to exit before removing the output directory.
func (s *SessionCtx) kill() {
	s.mu.Lock()
	proc := s.proc
	dir := s.outputDir
	s.proc = nil
	s.outputDir = ""
	s.mu.Unlock()

	if proc != nil {
		if err := killProcessGroup(proc.cmd); err != nil {
			s.logger.Warn().Err(err).Msg("unable to kill encoder")
		}
		<-proc.done
	}

	if dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn().Err(err).Str("dir", dir).Msg("unable to remove output dir")
		}
	}
}

func segmentPath(dir string, segment int) string {
	return filepath.Join(dir, segmentName(segment))
}
