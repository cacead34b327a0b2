package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/muhammadolammi/skillsmap/internal/skills"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Context is the per-session state of one user's interaction. Fields are read
// and written under the context's own lock.
type Context struct {
	ID     string
	UserID uuid.UUID

	mu               sync.Mutex
	apiKey           string
	skills           []string
	ratings          skills.Ratings
	lastResumeHash   string
	showSkillsMap    bool
	advisorSessionID string
	messages         []Message
}

func New(id string, userID uuid.UUID) *Context {
	return &Context{
		ID:      id,
		UserID:  userID,
		skills:  []string{},
		ratings: skills.Ratings{},
	}
}

func (c *Context) APIKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apiKey
}

func (c *Context) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = key
}

// Skills returns a copy of the session's known skills.
func (c *Context) Skills() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.skills...)
}

func (c *Context) SetSkills(list []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skills = append([]string{}, list...)
}

func (c *Context) Ratings() skills.Ratings {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(skills.Ratings, len(c.ratings))
	for k, v := range c.ratings {
		out[k] = v
	}
	return out
}

func (c *Context) SetRatings(r skills.Ratings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ratings = make(skills.Ratings, len(r))
	for k, v := range r {
		c.ratings[k] = v
	}
}

// SeenResume reports whether hash is the last resume this session processed.
func (c *Context) SeenResume(hash string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return hash != "" && c.lastResumeHash == hash
}

func (c *Context) MarkResume(hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastResumeHash = hash
}

func (c *Context) ShowSkillsMap() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showSkillsMap
}

func (c *Context) SetShowSkillsMap(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showSkillsMap = v
}

// AdvisorSessionID returns the advisor chat session, creating an id on first use.
func (c *Context) AdvisorSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.advisorSessionID == "" {
		c.advisorSessionID = uuid.NewString()
	}
	return c.advisorSessionID
}

func (c *Context) AppendMessage(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, m)
}

func (c *Context) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message{}, c.messages...)
}

// Registry holds live sessions keyed by session id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Context
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Context)}
}

func (r *Registry) Get(id string) (*Context, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sessions[id]
	return c, ok
}

// GetOrCreate returns the session for id. A session owned by a different user
// is replaced.
func (r *Registry) GetOrCreate(id string, userID uuid.UUID) *Context {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.sessions[id]; ok && c.UserID == userID {
		return c
	}
	c := New(id, userID)
	r.sessions[id] = c
	return c
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
