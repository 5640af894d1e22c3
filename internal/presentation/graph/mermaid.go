package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/leadchat/pkg/domain"
)

// GraphOverlay contains conversation data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFor derives the overlay of a conversation: every node the user
// answered is visited, plus the current one.
func OverlayFor(g *domain.Graph, conv *domain.Conversation) *GraphOverlay {
	if conv == nil {
		return nil
	}
	o := &GraphOverlay{CurrentNode: conv.CurrentNodeID}
	for id := range conv.Data {
		if _, ok := g.Node(id); ok {
			o.VisitedNodes = append(o.VisitedNodes, id)
		}
	}
	sort.Strings(o.VisitedNodes)
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the conversation graph.
// Shapes:
//   - Entry: ((Circle))
//   - Lead capture: [/Parallelogram/]
//   - Thanks: [[Subroutine]]
//   - Default: [Rectangle]
//
// Navigation options point to an asymmetric URL node with a dotted arrow.
func GenerateMermaid(g *domain.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	navTargets := make(map[string]bool)
	for _, node := range g.Nodes() {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == g.EntryID():
			opener, closer = "((", "))"
		case node.LeadCapture:
			opener, closer = "[/", "/]"
		case node.ID == g.ThanksID():
			opener, closer = "[[", "]]"
		}

		label := node.ID
		if node.LeadContext != "" {
			label = fmt.Sprintf("%s <br/> %s", node.ID, node.LeadContext)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escape(label), closer)

		for _, opt := range node.Options {
			text := escape(opt.Label)
			if opt.NextID != "" {
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", safeID, text, sanitizeMermaidID(opt.NextID))
				continue
			}
			if _, ok := g.Navigation(opt.Value); ok {
				navID := "nav_" + sanitizeMermaidID(opt.Value)
				navTargets[opt.Value] = true
				fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", safeID, text, navID)
			}
		}
	}

	for _, action := range g.NavigationActions() {
		if !navTargets[action.Value] {
			continue
		}
		fmt.Fprintf(&sb, "    nav_%s>\"%s\"]\n", sanitizeMermaidID(action.Value), escape(action.URL))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visited[safeID] && safeID != "" {
				visited[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
