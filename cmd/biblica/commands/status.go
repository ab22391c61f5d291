package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/biblica-labs/biblica-go/internal/embedder"
	"github.com/biblica-labs/biblica-go/internal/provider"
	"github.com/biblica-labs/biblica-go/internal/rag"
	"github.com/biblica-labs/biblica-go/internal/store"
)

// NewStatusCmd constructs the `biblica status` command. It inspects local
// state only and makes no remote model calls.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the corpus, index, model, and history status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			providerCfg := provider.ConfigFromEnv()
			embCfg := embedder.ConfigFromEnv()

			fmt.Printf("corpus:     %s\n", corpusStatus())
			fmt.Printf("index:      %s at %s\n", indexBackend(), indexLocation())
			fmt.Printf("fragments:  %s\n", fragmentStatus(ctx))
			fmt.Printf("model:      %s (%s)\n", modelDisplayName(providerCfg), providerCfg.Backend)
			fmt.Printf("embedding:  %s (%s)\n", embeddingDisplayName(embCfg), embCfg.Provider)
			fmt.Printf("history:    %s\n", historyStatus(ctx))

			return nil
		},
	}
}

func corpusStatus() string {
	path, err := corpusPath()
	if err != nil {
		return fmt.Sprintf("unavailable (%v)", err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Sprintf("%s (missing; `biblica setup` downloads it)", path)
	}
	return fmt.Sprintf("%s (present)", path)
}

func fragmentStatus(ctx context.Context) string {
	index, err := openIndex(ctx)
	if errors.Is(err, rag.ErrIndexNotFound) {
		return "not built (run `biblica setup`)"
	}
	if err != nil {
		return fmt.Sprintf("unavailable (%v)", err)
	}
	defer func() { _ = index.Close() }()

	count, err := index.Count(ctx)
	if err != nil {
		return fmt.Sprintf("unavailable (%v)", err)
	}
	if count == 0 {
		return "0 (empty; run `biblica setup`)"
	}
	return fmt.Sprintf("%d", count)
}

func historyStatus(ctx context.Context) string {
	path, ok := historyDBPath()
	if !ok {
		return "disabled"
	}
	// Stat before opening: store.Open would create the database file.
	if _, err := os.Stat(path); err != nil {
		return fmt.Sprintf("empty (%s)", path)
	}

	hs, err := store.Open(path)
	if err != nil {
		return fmt.Sprintf("unavailable (%v)", err)
	}
	defer func() { _ = hs.Close() }()

	count, err := hs.Count(ctx)
	if err != nil {
		return fmt.Sprintf("unavailable (%v)", err)
	}
	return fmt.Sprintf("%d messages (%s)", count, path)
}
