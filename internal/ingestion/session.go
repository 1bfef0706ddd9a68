package ingestion

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/kioskops/ledger/internal/domain"
)

// SessionState is the import workflow state. One state is active at a time
// and transitions are guarded, so processing before a file is uploaded is
// unrepresentable.
type SessionState string

const (
	StateConfigured SessionState = "CONFIGURED"
	StateUploaded   SessionState = "UPLOADED"
	StateMapped     SessionState = "MAPPED"
	StateProcessing SessionState = "PROCESSING"
	StateDone       SessionState = "DONE"
)

// ErrIllegalTransition is wrapped by all transition guard failures.
var ErrIllegalTransition = fmt.Errorf("illegal import state transition")

// Session tracks one operator import from configuration through commit.
// Nothing is persisted before Process completes, so an abandoned session
// simply expires from the TTL store with no side effects.
type Session struct {
	mu sync.Mutex

	ID     string       `json:"id"`
	State  SessionState `json:"state"`
	Source domain.Source `json:"source"`
	Period string       `json:"period"`

	Headers  []string      `json:"headers,omitempty"`
	Preview  []Row         `json:"preview,omitempty"`
	PresetID string        `json:"preset,omitempty"`
	Mapping  ManualMapping `json:"mapping,omitempty"`
	Result   *ImportResult `json:"result,omitempty"`
	LastErr  string        `json:"last_error,omitempty"`

	fileData []byte
	preset   *Preset
}

func (s *Session) attachFile(data []byte, headers []string, preview []Row, preset *Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.State {
	case StateConfigured, StateUploaded, StateMapped:
		// Re-uploading replaces the pending file.
	default:
		return fmt.Errorf("%w: attach file in %s", ErrIllegalTransition, s.State)
	}
	s.fileData = data
	s.Headers = headers
	s.Preview = preview
	s.preset = preset
	s.Mapping = nil
	s.LastErr = ""
	if preset != nil {
		s.PresetID = preset.ID
		s.Source = preset.Source
		s.State = StateMapped
	} else {
		s.PresetID = ""
		s.State = StateUploaded
	}
	return nil
}

func (s *Session) setMapping(m ManualMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.State {
	case StateUploaded, StateMapped:
	default:
		return fmt.Errorf("%w: set mapping in %s", ErrIllegalTransition, s.State)
	}
	if s.preset != nil {
		return fmt.Errorf("manual mapping not applicable: preset %s detected", s.PresetID)
	}
	if err := m.Validate(); err != nil {
		return err
	}
	s.Mapping = m
	s.State = StateMapped
	return nil
}

func (s *Session) beginProcess() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State != StateMapped {
		return fmt.Errorf("%w: process in %s", ErrIllegalTransition, s.State)
	}
	s.State = StateProcessing
	return nil
}

func (s *Session) completeProcess(result *ImportResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Result = result
	s.LastErr = ""
	s.State = StateDone
}

// failProcess returns the session to the review step, as a failed merge
// leaves no partial state behind.
func (s *Session) failProcess(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastErr = err.Error()
	s.State = StateMapped
}

// Sessions is a TTL-bounded store of in-flight import sessions.
type Sessions struct {
	c *cache.Cache
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{c: cache.New(ttl, ttl/2)}
}

func (s *Sessions) Create(source domain.Source, period string) *Session {
	sess := &Session{
		ID:     uuid.NewString(),
		State:  StateConfigured,
		Source: source,
		Period: period,
	}
	s.c.Set(sess.ID, sess, cache.DefaultExpiration)
	return sess
}

func (s *Sessions) Get(id string) (*Session, bool) {
	v, ok := s.c.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}
