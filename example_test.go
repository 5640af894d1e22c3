package leadchat_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/leadchat"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/dsl"
	"github.com/aretw0/leadchat/pkg/ports"
)

// ExampleNew walks the embedded portfolio flow up to a delivered lead.
func ExampleNew() {
	var delivered *domain.LeadRecord
	relay := ports.DelivererFunc(func(_ context.Context, lead *domain.LeadRecord) error {
		delivered = lead
		return nil
	})

	bot, err := leadchat.New("", leadchat.WithDeliverer(relay))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	eng := bot.NewEngine("demo")
	eng.Start(ctx)

	if _, err := eng.ChooseValue(ctx, "services"); err != nil {
		log.Fatal(err)
	}
	turn, err := eng.ChooseValue(ctx, "website")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("lead form:", turn.LeadCapture, turn.LeadContext)

	res, err := eng.SubmitLead(ctx, domain.LeadFields{Name: "Ada", Email: "ada@example.com"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Outcome, delivered.Fields.Email)
	// Output:
	// lead form: true website
	// accepted ada@example.com
}

// ExampleWithGraph builds a flow in Go instead of loading a file.
func ExampleWithGraph() {
	b := dsl.New()
	b.Add("welcome").
		Say("Hi! Need a website?").
		Option("Yes", "lead", "yes")
	b.Add("lead").
		Say("Leave your details.").
		CaptureLead("website")

	bot, err := leadchat.New("", leadchat.WithGraph(b.MustBuild()))
	if err != nil {
		log.Fatal(err)
	}

	view := bot.NewEngine("").Start(context.Background())
	fmt.Println(view.Transcript[0].Text)
	fmt.Println(len(view.Options), "option")
	// Output:
	// Hi! Need a website?
	// 1 option
}
