package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewAskCmd constructs the `biblica ask` command, which answers a single
// question and prints the result to stdout.
func NewAskCmd() *cobra.Command {
	var stream bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question about the Scriptures",
		Long: `Ask a single question and print the grounded answer.

The answer is assembled only from passages retrieved out of the indexed
corpus and cites the verses it relies on (e.g. Genesis 1:1). By default
the whole answer prints once it is complete; --stream prints increments
as the model produces them.

Examples:
  biblica ask "who led Israel out of Egypt?"
  biblica ask what does the Bible say about forgiveness
  biblica ask --stream "how does the book of Job end?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			stack, err := buildQueryStack(ctx)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer stack.Close()

			question := strings.Join(args, " ")

			// Generation failures render in-band rather than as a bare
			// process error, matching the chat surfaces.
			if stream {
				if err := stack.Engine.AnswerStream(ctx, question, os.Stdout); err != nil {
					fmt.Printf("\nError generating response: %v\n", err)
					return nil
				}
				fmt.Println()
				return nil
			}

			answer, err := stack.Engine.Answer(ctx, question)
			if err != nil {
				fmt.Printf("Error generating response: %v\n", err)
				return nil
			}
			fmt.Println(answer)
			return nil
		},
	}

	cmd.Flags().BoolVar(&stream, "stream", false, "Stream the answer as it is generated")

	return cmd
}
