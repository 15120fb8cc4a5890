package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"chexray-pipeline/models"
)

// Status is the pipeline state of a session.
type Status string

const (
	StatusIdle             Status = "idle"
	StatusImageUploaded    Status = "image_uploaded"
	StatusEndpointVerified Status = "endpoint_verified"
	StatusAnalyzing        Status = "analyzing"
	StatusResultsReady     Status = "results_ready"
	StatusFailed           Status = "failed"
)

// Session holds the per-user state for one continuous interaction.
// All mutation goes through methods; results are committed only on a
// fully successful analysis, so MedicalReport and LaymanReport are
// always both-or-neither.
type Session struct {
	mu sync.Mutex

	id        string
	createdAt time.Time

	status    Status
	image     []byte
	imageName string
	endpoint  string
	apiKey    string
	connected bool
	result    *models.AnalysisResult
	lastError string
}

// View is an immutable snapshot of a session for rendering.
type View struct {
	ID        string                 `json:"session_id"`
	Status    Status                 `json:"status"`
	Connected bool                   `json:"connected"`
	HasImage  bool                   `json:"has_image"`
	ImageName string                 `json:"image_name,omitempty"`
	Endpoint  string                 `json:"endpoint,omitempty"`
	Result    *models.AnalysisResult `json:"result,omitempty"`
	LastError string                 `json:"last_error,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func newSession() *Session {
	return &Session{
		id:        uuid.NewString(),
		createdAt: time.Now(),
		status:    StatusIdle,
	}
}

func (s *Session) ID() string { return s.id }

// SetImage stores the uploaded image bytes and moves the session to
// the image_uploaded state. Re-uploading replaces the previous image
// but keeps any committed results.
func (s *Session) SetImage(data []byte, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = append([]byte(nil), data...)
	s.imageName = name
	if s.status == StatusIdle || s.status == StatusFailed {
		s.status = StatusImageUploaded
	}
}

// Image returns a copy of the uploaded image bytes.
func (s *Session) Image() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.image...)
}

// SetConnected records the outcome of the most recent probe. The flag
// is not re-verified before analysis; staleness is accepted.
func (s *Session) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = connected
	if connected && s.status == StatusImageUploaded {
		s.status = StatusEndpointVerified
	}
}

// SetOverrides stores per-session endpoint and API key overrides.
func (s *Session) SetOverrides(endpoint, apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if endpoint != "" {
		s.endpoint = endpoint
	}
	if apiKey != "" {
		s.apiKey = apiKey
	}
}

// Overrides returns the session's endpoint and API key overrides.
func (s *Session) Overrides() (endpoint, apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint, s.apiKey
}

// BeginAnalysis moves the session into the analyzing state.
// Re-entering is always permitted; a successful run overwrites prior
// results.
func (s *Session) BeginAnalysis() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusAnalyzing
	s.lastError = ""
}

// Commit stores a completed analysis and marks results ready.
func (s *Session) Commit(result *models.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.status = StatusResultsReady
	s.lastError = ""
}

// Fail records an analysis failure. Previously committed results stay
// untouched; no partial state from the failed attempt is kept.
func (s *Session) Fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusFailed
	s.lastError = message
}

// Result returns the committed analysis result, or nil.
func (s *Session) Result() *models.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// View snapshots the session for JSON rendering.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:        s.id,
		Status:    s.status,
		Connected: s.connected,
		HasImage:  len(s.image) > 0,
		ImageName: s.imageName,
		Endpoint:  s.endpoint,
		Result:    s.result,
		LastError: s.lastError,
		CreatedAt: s.createdAt,
	}
}

// Store is an in-memory session registry keyed by session ID. Sessions
// live until explicitly deleted; nothing is persisted.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create registers a new empty session and returns it.
func (st *Store) Create() *Session {
	s := newSession()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.id] = s
	return s
}

// Get returns the session with the given ID, or nil.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

// Delete ends a session and discards its state.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
