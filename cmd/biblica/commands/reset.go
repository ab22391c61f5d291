package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/biblica-labs/biblica-go/internal/rag"
	"github.com/biblica-labs/biblica-go/internal/store"
)

// NewResetCmd constructs the `biblica reset` command, which deletes the
// vector index and, optionally, the conversation history.
func NewResetCmd() *cobra.Command {
	var yes bool
	var clearHistory bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the vector index (and optionally the chat history)",
		Long: `Delete the local vector index. The downloaded corpus file is kept.

Deletion is permanent. Recovery is running 'biblica setup' again, which
rebuilds the index from the corpus.

Pass --history to also clear the stored conversation history.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !yes && !confirmReset(clearHistory) {
				fmt.Println("Aborted.")
				return nil
			}

			if err := destroyIndex(ctx); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			if clearHistory {
				if err := clearHistoryStore(ctx); err != nil {
					return fmt.Errorf("reset: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&clearHistory, "history", false, "Also clear the conversation history")

	return cmd
}

func confirmReset(clearHistory bool) bool {
	fmt.Printf("This permanently deletes the %s index at %s", indexBackend(), indexLocation())
	if clearHistory {
		fmt.Print(" and the conversation history")
	}
	fmt.Print(".\nProceed? [y/N]: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func destroyIndex(ctx context.Context) error {
	index, err := openIndex(ctx)
	if errors.Is(err, rag.ErrIndexNotFound) {
		fmt.Println("No index found; nothing to delete.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}

	if err := index.Destroy(ctx); err != nil {
		_ = index.Close()
		return fmt.Errorf("failed to destroy index: %w", err)
	}
	_ = index.Close()

	fmt.Printf("Deleted the %s index at %s. Run `biblica setup` to rebuild it.\n", indexBackend(), indexLocation())
	return nil
}

func clearHistoryStore(ctx context.Context) error {
	path, ok := historyDBPath()
	if !ok {
		fmt.Println("History persistence is disabled; nothing to clear.")
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Println("No history database found; nothing to clear.")
		return nil
	}

	hs, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	defer func() { _ = hs.Close() }()

	deleted, err := hs.Clear(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	fmt.Printf("Cleared %d history messages.\n", deleted)
	return nil
}
