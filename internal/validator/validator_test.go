package validator

import (
	"testing"

	"github.com/aretw0/leadchat/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLint_CleanGraph(t *testing.T) {
	b := dsl.New().Navigate("view_portfolio", "/portfolio", false)
	b.Add("welcome").Say("Hi").Option("Hire", "lead", "hire").Link("Work", "view_portfolio")
	b.Add("lead").Say("Details?").CaptureLead("hire")
	g, err := b.Build()
	require.NoError(t, err)

	assert.Empty(t, Lint(g))
	reached := Reachable(g)
	assert.True(t, reached["thanks"])
	assert.Len(t, reached, 3)
}

func TestLint_Warnings(t *testing.T) {
	b := dsl.New().Navigate("view_pricing", "/pricing", false)
	b.Add("welcome").Say("Hi").Option("Loop", "welcome", "loop")
	b.Add("orphan").Say("Nobody gets here").CaptureLead("lost")
	g, err := b.Build()
	require.NoError(t, err)

	warnings := Lint(g)
	require.Len(t, warnings, 3)
	assert.Empty(t, warnings[0].NodeID)
	assert.Equal(t, "orphan", warnings[2].NodeID)

	out := Format(warnings)
	assert.Contains(t, out, "- orphan: unreachable from entry node welcome")
	assert.Contains(t, out, "no lead capture node is reachable")
	assert.Contains(t, out, `navigation action "view_pricing" is never offered`)
}
