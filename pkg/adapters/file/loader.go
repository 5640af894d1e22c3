package file

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// nodeSpec is a node as authored in a flow file; the ID is its map key.
type nodeSpec struct {
	Message     string            `mapstructure:"message"`
	Options     []domain.Option   `mapstructure:"options"`
	LeadCapture bool              `mapstructure:"lead_capture"`
	LeadContext string            `mapstructure:"lead_context"`
	Metadata    map[string]string `mapstructure:"metadata"`
}

// flowDocument is the top level of a flow file:
//
//	entry: welcome
//	navigation:
//	  - {value: view_portfolio, url: /portfolio}
//	nodes:
//	  welcome:
//	    message: Hi!
//	    options:
//	      - {label: Services, next: services}
type flowDocument struct {
	domain.GraphConfig `mapstructure:",squash"`
	Nodes              map[string]nodeSpec `mapstructure:"nodes"`
}

// Loader implements ports.GraphLoader for YAML or JSON flow files.
type Loader struct {
	name string
	read func() ([]byte, error)
}

// NewLoader reads the flow file at path on every LoadNodes call.
func NewLoader(path string) *Loader {
	return &Loader{
		name: path,
		read: func() ([]byte, error) { return os.ReadFile(path) },
	}
}

// NewLoaderFromBytes parses an in-memory flow document (e.g. go:embed).
func NewLoaderFromBytes(name string, data []byte) *Loader {
	return &Loader{
		name: name,
		read: func() ([]byte, error) { return data, nil },
	}
}

// LoadNodes reads and decodes the flow. Nodes come back sorted by ID.
func (l *Loader) LoadNodes(ctx context.Context) ([]domain.Node, domain.GraphConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.GraphConfig{}, err
	}
	data, err := l.read()
	if err != nil {
		return nil, domain.GraphConfig{}, fmt.Errorf("failed to read flow %s: %w", l.name, err)
	}
	nodes, cfg, err := Parse(data)
	if err != nil {
		return nil, domain.GraphConfig{}, fmt.Errorf("flow %s: %w", l.name, err)
	}
	return nodes, cfg, nil
}

// Parse decodes a YAML (or JSON, a YAML subset) flow document.
// Unknown keys are rejected so typos surface at load time.
func Parse(data []byte) ([]domain.Node, domain.GraphConfig, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, domain.GraphConfig{}, fmt.Errorf("failed to parse flow: %w", err)
	}

	var doc flowDocument
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, domain.GraphConfig{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, domain.GraphConfig{}, fmt.Errorf("failed to decode flow: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, domain.GraphConfig{}, fmt.Errorf("flow declares no nodes")
	}

	ids := make([]string, 0, len(doc.Nodes))
	for id := range doc.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	nodes := make([]domain.Node, 0, len(ids))
	for _, id := range ids {
		spec := doc.Nodes[id]
		nodes = append(nodes, domain.Node{
			ID:          id,
			Message:     spec.Message,
			Options:     spec.Options,
			LeadCapture: spec.LeadCapture,
			LeadContext: spec.LeadContext,
			Metadata:    spec.Metadata,
		})
	}
	return nodes, doc.GraphConfig, nil
}
