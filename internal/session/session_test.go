package session

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/muhammadolammi/skillsmap/internal/skills"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextCopiesState(t *testing.T) {
	c := New("s1", uuid.New())

	in := []string{"python"}
	c.SetSkills(in)
	in[0] = "changed"
	assert.Equal(t, []string{"python"}, c.Skills())

	out := c.Skills()
	out[0] = "mutated"
	assert.Equal(t, []string{"python"}, c.Skills())

	r := skills.Ratings{"Teamwork": 4}
	c.SetRatings(r)
	r["Teamwork"] = 9
	assert.Equal(t, skills.Ratings{"Teamwork": 4}, c.Ratings())
}

func TestContextResumeHash(t *testing.T) {
	c := New("s1", uuid.New())

	assert.False(t, c.SeenResume(""))
	assert.False(t, c.SeenResume("abc"))
	c.MarkResume("abc")
	assert.True(t, c.SeenResume("abc"))
	assert.False(t, c.SeenResume("def"))
}

func TestAdvisorSessionIDIsStable(t *testing.T) {
	c := New("s1", uuid.New())
	first := c.AdvisorSessionID()

	require.NotEmpty(t, first)
	assert.Equal(t, first, c.AdvisorSessionID())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	user := uuid.New()

	_, ok := r.Get("a")
	assert.False(t, ok)

	c := r.GetOrCreate("a", user)
	c.SetAPIKey("key")
	assert.Same(t, c, r.GetOrCreate("a", user))

	other := r.GetOrCreate("a", uuid.New())
	assert.NotSame(t, c, other)
	assert.Empty(t, other.APIKey())

	r.Delete("a")
	_, ok = r.Get("a")
	assert.False(t, ok)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	user := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := r.GetOrCreate("shared", user)
			c.AppendMessage(Message{Role: "user", Content: "hi"})
		}()
	}
	wg.Wait()

	c, ok := r.Get("shared")
	require.True(t, ok)
	assert.Len(t, c.Messages(), 20)
}
