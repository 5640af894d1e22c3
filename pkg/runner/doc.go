/*
Package runner implements the terminal chat loop for a conversation engine.

The runner prints bot messages with numbered options, reads choices, shows
the lead form as a sequence of prompts and offers a retry when delivery
fails. Typing "restart" begins again; "exit" or "quit" leaves.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithStore(store),
		runner.WithSessionID("cli"),
	)

	if err := r.Run(ctx, engine); err != nil {
		log.Fatal(err)
	}
*/
package runner
