package loam

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/leadchat/pkg/domain"
	"gopkg.in/yaml.v3"
)

// frontmatter mirrors NodeMetadata with the keys the loader decodes.
type frontmatter struct {
	ID          string            `yaml:"id"`
	Options     []domain.Option   `yaml:"options,omitempty"`
	LeadCapture bool              `yaml:"lead_capture,omitempty"`
	LeadContext string            `yaml:"lead_context,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
}

// Export writes g as a directory the Loader reads back: one Markdown
// document per node plus a _flow.yaml with the graph settings.
// Existing files with the same names are overwritten.
func Export(dir string, g *domain.Graph) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	for _, n := range g.Nodes() {
		if strings.ContainsAny(n.ID, `\:`) || strings.Contains(n.ID, "..") {
			return fmt.Errorf("node %q: id cannot be used as a file name", n.ID)
		}

		var buf bytes.Buffer
		fm := frontmatter{ID: n.ID, Options: n.Options, LeadCapture: n.LeadCapture, LeadContext: n.LeadContext, Metadata: n.Metadata}
		if err := writeFrontmatter(&buf, fm); err != nil {
			return fmt.Errorf("node %q: %w", n.ID, err)
		}
		buf.WriteString(strings.TrimSpace(n.Message))
		buf.WriteByte('\n')

		path := filepath.Join(dir, filepath.FromSlash(n.ID)+".md")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	settings, err := yaml.Marshal(domain.GraphConfig{
		EntryID:    g.EntryID(),
		ThanksID:   g.ThanksID(),
		Navigation: g.NavigationActions(),
	})
	if err != nil {
		return fmt.Errorf("encode flow settings: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, FlowDocumentID+".yaml"), settings, 0o644)
}

func writeFrontmatter(buf *bytes.Buffer, fm frontmatter) error {
	data, err := yaml.Marshal(fm)
	if err != nil {
		return err
	}
	buf.WriteString("---\n")
	buf.Write(data)
	buf.WriteString("---\n")
	return nil
}
