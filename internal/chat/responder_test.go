package chat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespond_Routing(t *testing.T) {
	r := DefaultResponder()

	tests := []struct {
		message string
		want    Category
	}{
		{"I can't sleep at night", "sleep"},
		{"Work pressure is getting to me", "stress"},
		{"I keep having PANIC attacks", "anxiety"},
		{"I feel so lonely lately", "depression"},
		{"I've been depressed for weeks", "depression"},
		{"insomnia again", "sleep"},
		{"hello there", "greeting"},
		{"thank you!", "thanks"},
		{"What's the weather like?", CategoryDefault},
		{"", CategoryDefault},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Respond(tt.message).Category)
		})
	}
}

func TestRespond_FirstMatchWins(t *testing.T) {
	r := DefaultResponder()

	// stress is checked before anxiety and sleep
	assert.Equal(t, Category("stress"), r.Respond("stressed, worried and tired").Category)
	// anxiety is checked before depression
	assert.Equal(t, Category("anxiety"), r.Respond("sad and anxious").Category)
	// greeting comes before thanks
	assert.Equal(t, Category("greeting"), r.Respond("hey, thanks").Category)
}

func TestRespond_SubstringKeywords(t *testing.T) {
	r := DefaultResponder()

	// "this" contains "hi"; keyword groups match substrings, not words
	assert.Equal(t, Category("greeting"), r.Respond("this").Category)
}

func TestRespond_ReplyText(t *testing.T) {
	reply := DefaultResponder().Respond("I can't sleep at night")
	assert.Contains(t, reply.Text, "Good sleep is crucial for mental health")

	reply = DefaultResponder().Respond("what can you do")
	assert.Contains(t, reply.Text, "Medication reminders setup")
}

func TestWelcome(t *testing.T) {
	r := DefaultResponder()
	assert.Contains(t, r.Welcome("Ada Obi"), "Hello Ada Obi!")
	assert.Contains(t, r.Welcome(""), "Hello!")
	assert.Contains(t, r.Welcome(""), "MediBot")
}

func TestNewResponder_Validation(t *testing.T) {
	_, err := NewResponder(Templates{})
	assert.Error(t, err)

	_, err = NewResponder(Templates{Default: "ok", Routes: []Route{{Category: "x", Reply: "y"}}})
	assert.Error(t, err)

	r, err := NewResponder(Templates{
		Default: "fallback",
		Routes:  []Route{{Category: "food", Keywords: []string{" Hungry "}, Reply: "eat"}},
	})
	require.NoError(t, err)
	assert.Equal(t, Reply{Category: "food", Text: "eat"}, r.Respond("so HUNGRY"))
}

func TestLoadResponder_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.yaml")
	content := "default: nada\nroutes:\n  - category: sueno\n    keywords: [dormir]\n    reply: duerme\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r, err := LoadResponder(path)
	require.NoError(t, err)
	assert.Equal(t, Category("sueno"), r.Respond("no puedo dormir").Category)
	assert.Equal(t, "nada", r.Respond("hola").Text)

	_, err = LoadResponder(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
