package transcode

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultIdleTimeout is how long a session survives without segment
	// requests or pings.
	DefaultIdleTimeout = 20 * time.Second
	// DefaultSweepInterval is how often idle sessions are looked for.
	DefaultSweepInterval = time.Second
)

type Config struct {
	TranscodeDir   string
	FFmpegBinary   string
	Settings       map[VideoCodec]Settings
	IdleTimeout    time.Duration
	SweepInterval  time.Duration
	CommandFactory CommandFactory
}

func (c Config) withDefaultValues() Config {
	if c.TranscodeDir == "" {
		c.TranscodeDir = filepath.Join(os.TempDir(), "dose", "transcodings")
	}
	if c.FFmpegBinary == "" {
		c.FFmpegBinary = "ffmpeg"
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.CommandFactory == nil {
		c.CommandFactory = DefaultCommandFactory
	}

	settings := DefaultSettingsMap()
	for codec, s := range c.Settings {
		settings[codec] = s
	}
	c.Settings = settings

	return c
}

type entry struct {
	session       *SessionCtx
	lastRequested time.Time
}

// ManagerCtx is the registry of running sessions.
type ManagerCtx struct {
	logger zerolog.Logger
	config Config
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*entry

	group singleflight.Group
	cron  *cron.Cron

	events struct {
		onCreate  func(id string)
		onEvict   func(id string)
		onFailure func(id string, err error)
	}
}

func New(config Config) *ManagerCtx {
	return &ManagerCtx{
		logger:   log.With().Str("module", "transcode").Str("submodule", "manager").Logger(),
		config:   config.withDefaultValues(),
		now:      time.Now,
		sessions: map[string]*entry{},
	}
}

// Start schedules the idle sweep.
func (m *ManagerCtx) Start() error {
	m.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	schedule := fmt.Sprintf("@every %s", m.config.SweepInterval)
	if _, err := m.cron.AddFunc(schedule, m.Cleanup); err != nil {
		return fmt.Errorf("unable to schedule cleanup: %w", err)
	}

	m.cron.Start()
	m.logger.Info().
		Dur("idle-timeout", m.config.IdleTimeout).
		Dur("sweep-interval", m.config.SweepInterval).
		Msg("session sweep scheduled")

	return nil
}

// Shutdown stops the sweep and every session.
func (m *ManagerCtx) Shutdown() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*entry{}
	m.mu.Unlock()

	for _, e := range sessions {
		e.session.Stop()
	}

	m.logger.Info().Int("sessions", len(sessions)).Msg("all sessions stopped")
}

// SetSettings replaces encoder settings for sessions created afterwards.
func (m *ManagerCtx) SetSettings(settings map[VideoCodec]Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for codec, s := range settings {
		m.config.Settings[codec] = s
	}
}

// Config returns the effective configuration, defaults applied.
func (m *ManagerCtx) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	config := m.config
	config.Settings = make(map[VideoCodec]Settings, len(m.config.Settings))
	for codec, s := range m.config.Settings {
		config.Settings[codec] = s
	}
	return config
}

func (m *ManagerCtx) Settings(codec VideoCodec) Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.config.Settings[codec]; ok {
		return s
	}
	return DefaultSettings()
}

func (m *ManagerCtx) Get(id string) (*SessionCtx, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return e.session, true
}

func (m *ManagerCtx) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Create registers a new session and starts its encoder.
func (m *ManagerCtx) Create(id string, options Options) (*SessionCtx, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", id, ErrSessionExists)
	}

	settings, ok := m.config.Settings[options.Codec]
	if !ok {
		settings = DefaultSettings()
	}

	session := NewSession(id, options, SessionConfig{
		FFmpegBinary:   m.config.FFmpegBinary,
		TranscodeDir:   m.config.TranscodeDir,
		Settings:       settings,
		CommandFactory: m.config.CommandFactory,
		OnFailure:      m.events.onFailure,
	})

	m.sessions[id] = &entry{
		session:       session,
		lastRequested: m.now(),
	}
	m.mu.Unlock()

	if err := session.Start(); err != nil {
		m.mu.Lock()
		if e, ok := m.sessions[id]; ok && e.session == session {
			delete(m.sessions, id)
		}
		m.mu.Unlock()

		session.Stop()
		return nil, err
	}

	m.logger.Info().
		Str("session", id).
		Str("source", options.SourcePath).
		Str("resolution", string(options.Resolution)).
		Msg("session created")

	if m.events.onCreate != nil {
		m.events.onCreate(id)
	}

	return session, nil
}

// GetOrCreate returns the session with id, creating it when absent.
// Concurrent calls for the same id share a single create.
func (m *ManagerCtx) GetOrCreate(id string, options Options) (*SessionCtx, error) {
	if session, ok := m.Get(id); ok {
		return session, nil
	}

	v, err, _ := m.group.Do(id, func() (interface{}, error) {
		if session, ok := m.Get(id); ok {
			return session, nil
		}
		return m.Create(id, options)
	})
	if err != nil {
		return nil, err
	}

	return v.(*SessionCtx), nil
}

// Remove stops and forgets the session. It reports whether it existed.
func (m *ManagerCtx) Remove(id string) bool {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}

	e.session.Stop()
	m.logger.Info().Str("session", id).Msg("session removed")
	return true
}

// Touch marks the session as requested now.
func (m *ManagerCtx) Touch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}

	e.lastRequested = m.now()
	return nil
}

// Cleanup removes every session idle for longer than the idle timeout.
func (m *ManagerCtx) Cleanup() {
	now := m.now()

	m.mu.Lock()
	var idle []*entry
	for id, e := range m.sessions {
		if now.Sub(e.lastRequested) > m.config.IdleTimeout {
			idle = append(idle, e)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, e := range idle {
		id := e.session.ID()

		m.logger.Info().
			Str("session", id).
			Time("last-requested", e.lastRequested).
			Msg("evicting idle session")

		e.session.Stop()

		if m.events.onEvict != nil {
			m.events.onEvict(id)
		}
	}
}

func (m *ManagerCtx) OnCreate(event func(id string)) {
	m.events.onCreate = event
}

func (m *ManagerCtx) OnEvict(event func(id string)) {
	m.events.onEvict = event
}

func (m *ManagerCtx) OnFailure(event func(id string, err error)) {
	m.events.onFailure = event
}
