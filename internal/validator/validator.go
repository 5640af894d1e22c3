// Package validator lints a built graph for authoring smells that
// domain.NewGraph accepts: unreachable nodes, flows without a lead form,
// unused navigation actions.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/leadchat/pkg/domain"
)

// Warning is a single lint finding.
type Warning struct {
	NodeID  string
	Message string
}

func (w Warning) String() string {
	if w.NodeID == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.NodeID, w.Message)
}

// Reachable returns the IDs reachable from the entry node through options.
// The thanks node is included once any lead-capture node is reachable.
func Reachable(g *domain.Graph) map[string]bool {
	visited := make(map[string]bool)
	queue := []string{g.EntryID()}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		node, ok := g.Node(currentID)
		if !ok {
			continue
		}
		if node.LeadCapture && !visited[g.ThanksID()] {
			queue = append(queue, g.ThanksID())
		}
		for _, opt := range node.Options {
			if opt.NextID != "" && !visited[opt.NextID] {
				queue = append(queue, opt.NextID)
			}
		}
	}
	return visited
}

// Lint reports every warning for g, sorted by node ID.
func Lint(g *domain.Graph) []Warning {
	var warnings []Warning
	reached := Reachable(g)

	leadReachable := false
	usedNav := make(map[string]bool)
	for _, n := range g.Nodes() {
		if !reached[n.ID] {
			if n.ID != g.ThanksID() {
				warnings = append(warnings, Warning{NodeID: n.ID, Message: "unreachable from entry node " + g.EntryID()})
			}
			continue
		}
		if n.LeadCapture {
			leadReachable = true
		}
		for _, opt := range n.Options {
			if opt.NextID == "" {
				usedNav[opt.Value] = true
			}
		}
	}

	if !leadReachable {
		warnings = append(warnings, Warning{Message: "no lead capture node is reachable"})
	}
	for _, nav := range g.NavigationActions() {
		if !usedNav[nav.Value] {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("navigation action %q is never offered", nav.Value)})
		}
	}

	sort.SliceStable(warnings, func(i, j int) bool { return warnings[i].NodeID < warnings[j].NodeID })
	return warnings
}

// Format renders warnings as a list.
func Format(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = "- " + w.String()
	}
	return strings.Join(lines, "\n")
}
