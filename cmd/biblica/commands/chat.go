package commands

import (
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/biblica-labs/biblica-go/internal/logging"
	"github.com/biblica-labs/biblica-go/internal/tracing"
	"github.com/biblica-labs/biblica-go/internal/tui"
)

// NewChatCmd constructs the `biblica chat` command, which starts the
// interactive terminal chat session.
func NewChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session in the terminal",
		Long: `Start an interactive chat session in the terminal.

Answers stream into the transcript as they are generated. Completed
exchanges are recorded in the conversation history (BIBLICA_HISTORY_DB;
set to "disabled" to turn persistence off). Logs go to stderr unless
BIBLICA_LOG_FILE redirects them away from the chat screen.

Keys: Enter submits, ctrl+r clears the transcript, esc or ctrl+c quits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			// Langfuse tracing is opt-in, a no-op without keys.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			}

			stack, err := buildQueryStack(ctx)
			if err != nil {
				return fmt.Errorf("chat: %w", err)
			}
			defer stack.Close()

			history, closeHistory := openHistory(log)
			defer closeHistory()

			if err := tui.Run(ctx, stack.Engine, history); err != nil {
				return fmt.Errorf("chat: %w", err)
			}
			return nil
		},
	}
}
