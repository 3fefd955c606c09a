// Package chat answers user messages with canned wellness guidance chosen by
// keyword groups.
package chat

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed responses.yaml
var defaultResponsesYAML []byte

// Category names the template a message was routed to.
type Category string

// CategoryDefault is returned when no keyword group matches.
const CategoryDefault Category = "default"

// Route maps a keyword group to a reply.
type Route struct {
	Category Category `yaml:"category"`
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

// Templates is the full response configuration of a Responder.
type Templates struct {
	Welcome string  `yaml:"welcome"`
	Routes  []Route `yaml:"routes"`
	Default string  `yaml:"default"`
}

// Reply is the responder output for one message.
type Reply struct {
	Category Category `json:"category"`
	Text     string   `json:"reply"`
}

// Responder routes messages over an ordered, immutable route table. It keeps
// no conversation state.
type Responder struct {
	welcome  string
	routes   []Route
	fallback string
}

// NewResponder validates and copies t.
func NewResponder(t Templates) (*Responder, error) {
	if strings.TrimSpace(t.Default) == "" {
		return nil, errors.New("chat: default reply is required")
	}

	routes := make([]Route, 0, len(t.Routes))
	for i, r := range t.Routes {
		if r.Category == "" || r.Reply == "" {
			return nil, fmt.Errorf("chat: route %d needs a category and a reply", i)
		}
		keywords := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				keywords = append(keywords, k)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("chat: route %q has no keywords", r.Category)
		}
		routes = append(routes, Route{Category: r.Category, Keywords: keywords, Reply: r.Reply})
	}

	return &Responder{welcome: t.Welcome, routes: routes, fallback: t.Default}, nil
}

// DefaultResponder returns the responder built from the embedded templates.
func DefaultResponder() *Responder {
	r, err := LoadResponder("")
	if err != nil {
		panic(fmt.Sprintf("chat: embedded templates are invalid: %v", err))
	}
	return r
}

// LoadResponder reads templates from a YAML file, or the embedded defaults when path is empty.
func LoadResponder(path string) (*Responder, error) {
	data := defaultResponsesYAML
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read chat templates %s: %w", path, err)
		}
	}

	var t Templates
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse chat templates: %w", err)
	}
	return NewResponder(t)
}

// Respond returns the reply of the first route with a keyword contained in message.
func (r *Responder) Respond(message string) Reply {
	lower := strings.ToLower(message)
	for _, route := range r.routes {
		for _, k := range route.Keywords {
			if strings.Contains(lower, k) {
				return Reply{Category: route.Category, Text: route.Reply}
			}
		}
	}
	return Reply{Category: CategoryDefault, Text: r.fallback}
}

// Welcome returns the greeting shown before the first message.
func (r *Responder) Welcome(fullName string) string {
	name := strings.TrimSpace(fullName)
	if name != "" {
		name = " " + name
	}
	return strings.ReplaceAll(r.welcome, "{{name}}", name)
}
