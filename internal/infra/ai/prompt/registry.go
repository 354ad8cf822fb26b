package prompt

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/docmind/internal/domain/ai"
)

// TextPlaceholder marks where the extracted document text goes in a template.
const TextPlaceholder = "{text}"

// Prompt is the (system prompt, user content template) pair owned by one analysis type.
type Prompt struct {
	System   string `yaml:"system"`
	Template string `yaml:"template"`
}

// Registry maps analysis types to prompts. It is built once at start and is
// read-only afterwards, so it is safe for concurrent use.
type Registry struct {
	prompts map[string]Prompt
}

// NewRegistry builds a registry from an explicit mapping.
func NewRegistry(prompts map[string]Prompt) (*Registry, error) {
	r := &Registry{prompts: make(map[string]Prompt, len(prompts))}
	for name, p := range prompts {
		if err := r.add(name, p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Default returns the registry with the built-in analysis types.
func Default() *Registry {
	r, err := NewRegistry(builtin)
	if err != nil {
		panic(err)
	}
	return r
}

// LoadRegistry returns the built-in registry extended (or overridden) by the
// YAML file at path. An empty path yields the built-ins only.
//
// File format:
//
//	glossary:
//	  system: "Extract the key terms..."
//	  template: "Document:\n\n{text}"
func LoadRegistry(path string) (*Registry, error) {
	merged := make(map[string]Prompt, len(builtin))
	for k, v := range builtin {
		merged[k] = v
	}
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompt registry: %w", err)
		}
		var extra map[string]Prompt
		if err := yaml.Unmarshal(data, &extra); err != nil {
			return nil, fmt.Errorf("parse prompt registry: %w", err)
		}
		for k, v := range extra {
			merged[k] = v
		}
	}
	return NewRegistry(merged)
}

func (r *Registry) add(name string, p Prompt) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("prompt registry: empty analysis type")
	}
	if strings.TrimSpace(p.System) == "" {
		return fmt.Errorf("prompt registry: %s has no system prompt", name)
	}
	if !strings.Contains(p.Template, TextPlaceholder) {
		return fmt.Errorf("prompt registry: %s template lacks %s", name, TextPlaceholder)
	}
	r.prompts[name] = p
	return nil
}

// Lookup returns the prompt pair for analysisType.
func (r *Registry) Lookup(analysisType string) (Prompt, error) {
	p, ok := r.prompts[analysisType]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: %q (allowed: %s)", ai.ErrUnknownAnalysisType, analysisType, strings.Join(r.Types(), ", "))
	}
	return p, nil
}

func (r *Registry) Has(analysisType string) bool {
	_, ok := r.prompts[analysisType]
	return ok
}

// SystemPrompt returns the analytical instruction for analysisType.
func (r *Registry) SystemPrompt(analysisType string) (string, error) {
	p, err := r.Lookup(analysisType)
	if err != nil {
		return "", err
	}
	return p.System, nil
}

// UserContent embeds text into analysisType's template.
func (r *Registry) UserContent(analysisType, text string) (string, error) {
	p, err := r.Lookup(analysisType)
	if err != nil {
		return "", err
	}
	return strings.Replace(p.Template, TextPlaceholder, text, 1), nil
}

// Types lists the registered analysis types, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.prompts))
	for k := range r.prompts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
