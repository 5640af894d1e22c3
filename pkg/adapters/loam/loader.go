package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/leadchat/pkg/domain"
)

// Loader adapts a Loam repository of Markdown/YAML/JSON documents to the
// GraphLoader interface. One document per node; frontmatter carries the
// options, the body is the message.
type Loader struct {
	Repo *loam.TypedRepository[NodeMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[NodeMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only, strict Loam repository at dir.
func Open(dir string) (*Loader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// ReadOnly keeps Loam from creating its dev sandbox; the graph is never written.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[NodeMetadata](repo)), nil
}

// LoadNodes reads every document in the repository. IDs come from the
// frontmatter or the file name, without extension.
//
// List only carries cached metadata, so each document is fetched with Get
// to read its body.
func (l *Loader) LoadNodes(ctx context.Context) ([]domain.Node, domain.GraphConfig, error) {
	listed, err := l.Repo.List(ctx)
	if err != nil {
		return nil, domain.GraphConfig{}, fmt.Errorf("loam list failed: %w", err)
	}

	var cfg domain.GraphConfig
	seen := make(map[string]string)
	nodes := make([]domain.Node, 0, len(listed))

	for _, entry := range listed {
		doc, err := l.Repo.Get(ctx, entry.ID)
		if err != nil {
			return nil, domain.GraphConfig{}, fmt.Errorf("loam get failed for %s: %w", entry.ID, err)
		}

		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, domain.GraphConfig{}, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID

		if id == FlowDocumentID {
			cfg = domain.GraphConfig{
				EntryID:    doc.Data.Entry,
				ThanksID:   doc.Data.Thanks,
				Navigation: doc.Data.Navigation,
			}
			continue
		}

		nodes = append(nodes, domain.Node{
			ID:          id,
			Message:     strings.TrimSpace(doc.Content),
			Options:     buildOptions(doc.Data.Options),
			LeadCapture: doc.Data.LeadCapture,
			LeadContext: doc.Data.LeadContext,
			Metadata:    doc.Data.Metadata,
		})
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes, cfg, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
