/*
Package leadchat is a scripted lead-generation chat engine for portfolio and
marketing sites.

A conversation walks a static graph of nodes. Each node shows a message and
a list of options; choosing an option moves to the next node. Lead capture
nodes ask for contact details instead, which are validated and handed to a
LeadDeliverer (for example a form relay). Navigation options (open the
portfolio, book a call) are handed back to the host instead of moving.

# Concept

The graph is data: a YAML/JSON flow file, a directory of Markdown nodes or Go
literals. It is validated once at load time, so dangling targets and
missing entry nodes are configuration errors, never runtime surprises. Hosts
(terminal, HTTP, MCP) drive an Engine per conversation, or a session.Manager
when state lives in a store.

# Usage

	bot, err := leadchat.New("flows/portfolio.yaml",
		leadchat.WithDeliverer(formrelay.New(relayURL)),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	eng := bot.NewEngine("")
	view := eng.Start(ctx)
	fmt.Println(view.Transcript[0].Text)

	turn, err := eng.ChooseValue(ctx, "services")
	if err != nil {
		log.Fatal(err)
	}
	if turn.LeadCapture {
		res, err := eng.SubmitLead(ctx, domain.LeadFields{Name: "Ada", Email: "ada@example.com"})
		...
	}
*/
package leadchat
