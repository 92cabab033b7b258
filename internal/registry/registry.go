// Package registry serves pre-authored jurisdiction templates. Templates
// are deploy-time artifacts: loaded once, cached for the process
// lifetime, and handed out only as deep copies so caller mutation never
// reaches the canonical documents.
package registry

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"guardrail/internal/spec"
)

//go:embed templates/*.yaml
var embedded embed.FS

// NotFoundError reports a lookup for an id with no template.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no jurisdiction template with id '%s'", e.ID)
}

// Summary is the listing view of one template.
type Summary struct {
	ID           string
	Name         string
	Jurisdiction string
	Framework    string
	Description  string
}

// Registry loads and caches jurisdiction templates from a filesystem.
type Registry struct {
	fsys   fs.FS
	logger *slog.Logger
	now    func() time.Time

	once      sync.Once
	loadErr   error
	templates map[string]*spec.Specification
	order     []string
}

// New builds a registry over an arbitrary filesystem rooted at a
// directory of *.yaml templates.
func New(fsys fs.FS, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{fsys: fsys, logger: logger, now: time.Now}
}

// NewEmbedded builds a registry over the templates compiled into the
// binary.
func NewEmbedded(logger *slog.Logger) *Registry {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic("registry: embedded templates missing: " + err.Error())
	}
	return New(sub, logger)
}

// load scans the template directory once. A template that fails to parse
// is skipped with a warning rather than poisoning the whole registry.
func (r *Registry) load() error {
	r.once.Do(func() {
		r.templates = make(map[string]*spec.Specification)

		entries, err := fs.ReadDir(r.fsys, ".")
		if err != nil {
			r.loadErr = fmt.Errorf("scan template directory: %w", err)
			return
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
				continue
			}
			id := strings.TrimSuffix(path.Base(name), ".yaml")

			content, err := fs.ReadFile(r.fsys, name)
			if err != nil {
				r.loadErr = fmt.Errorf("read template '%s': %w", name, err)
				return
			}
			s, err := spec.Parse(content)
			if err != nil {
				r.logger.Warn("skipping unparsable jurisdiction template",
					"template", name, "error", err)
				continue
			}
			r.templates[id] = s
			r.order = append(r.order, id)
		}
		sort.Strings(r.order)
		r.logger.Debug("jurisdiction templates loaded", "count", len(r.templates))
	})
	return r.loadErr
}

// List returns summaries for every template, sorted by id.
func (r *Registry) List() ([]Summary, error) {
	if err := r.load(); err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(r.order))
	for _, id := range r.order {
		summaries = append(summaries, summarize(id, r.templates[id]))
	}
	return summaries, nil
}

// Get returns a deep copy of the template with provenance stamped into
// its metadata. The registry's canonical copy is never exposed.
func (r *Registry) Get(id string) (*spec.Specification, error) {
	if err := r.load(); err != nil {
		return nil, err
	}
	template, ok := r.templates[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}

	clone := template.Clone()
	clone.Metadata.GeneratedFrom = id
	clone.Metadata.GeneratedAt = r.now().UTC().Format(time.RFC3339)
	return clone, nil
}

// Search matches the query case-insensitively against id, name,
// framework, jurisdiction, and description.
func (r *Registry) Search(query string) ([]Summary, error) {
	all, err := r.List()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var matches []Summary
	for _, s := range all {
		haystack := strings.ToLower(strings.Join([]string{
			s.ID, s.Name, s.Framework, s.Jurisdiction, s.Description,
		}, "\n"))
		if strings.Contains(haystack, q) {
			matches = append(matches, s)
		}
	}
	return matches, nil
}

func summarize(id string, s *spec.Specification) Summary {
	name := s.Metadata.ProjectName
	if name == "" {
		name = id
	}
	return Summary{
		ID:           id,
		Name:         name,
		Jurisdiction: s.Metadata.Jurisdiction,
		Framework:    s.Metadata.RegulationFramework,
		Description:  s.Metadata.Description,
	}
}
