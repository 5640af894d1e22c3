/*
Package dsl builds conversation graphs in Go instead of YAML.

	g, err := dsl.New().
		Navigate("view_portfolio", "/portfolio", false).
		Add("welcome").Say("Hi! How can I help?").
		Option("I need a website", "website_lead", "website").
		Link("See my work", "view_portfolio").
		Add("website_lead").Say("Great, leave your details.").CaptureLead("website").
		Build()

Build validates the graph the same way loaded graphs are validated.
Loader returns the nodes as a ports.GraphLoader instead.
*/
package dsl
