package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/biblica-labs/biblica-go/internal/bible"
	"github.com/biblica-labs/biblica-go/internal/embedder"
	"github.com/biblica-labs/biblica-go/internal/engine"
	"github.com/biblica-labs/biblica-go/internal/logging"
	"github.com/biblica-labs/biblica-go/internal/provider"
	"github.com/biblica-labs/biblica-go/internal/rag"
)

// NewSetupCmd constructs the `biblica setup` command, which downloads the
// corpus and builds the vector index every other command queries.
func NewSetupCmd() *cobra.Command {
	var force bool
	var noDownload bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Download the King James corpus and build the vector index",
		Long: `Download the King James Version corpus and build the vector index.

The corpus JSON is fetched once and kept at ~/.biblica/KJV.json (override
with CORPUS_PATH / CORPUS_URL). Every verse is chunked, embedded, and
upserted into the configured index backend. Indexing the full corpus makes
one embedding API call per batch of fragments and takes a few minutes.

Examples:
  biblica setup
  biblica setup --force
  CORPUS_PATH=./KJV.json biblica setup --no-download
  INDEX_BACKEND=qdrant biblica setup`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()

			path, err := corpusPath()
			if err != nil {
				return fmt.Errorf("setup: %w", err)
			}

			if _, statErr := os.Stat(path); os.IsNotExist(statErr) && !noDownload {
				url := getEnvOrDefault("CORPUS_URL", bible.DefaultCorpusURL)
				log.Info("setup: downloading corpus", slog.String("url", url), slog.String("dest", path))
				client := &http.Client{Timeout: 2 * time.Minute}
				if err := bible.Download(ctx, client, url, path); err != nil {
					return fmt.Errorf("setup: %w", err)
				}
			}

			verses, err := bible.LoadCorpus(path)
			switch {
			case errors.Is(err, bible.ErrCorpusNotFound):
				// Recoverable: a tiny built-in corpus keeps the pipeline
				// usable offline, clearly marked as not the real text.
				log.Warn("setup: corpus not found, indexing the built-in placeholder verses",
					slog.String("path", path),
					slog.String("hint", "run setup again without --no-download to fetch the full corpus"),
				)
				verses = bible.PlaceholderCorpus()
			case err != nil:
				// Malformed corpus data is never papered over.
				return fmt.Errorf("setup: %w", err)
			}
			log.Info("setup: corpus loaded", slog.Int("verses", len(verses)))

			docs := bible.Documents(verses)

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("setup: failed to initialise model provider: %w", err)
			}

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("setup: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("setup: failed to initialise embedder: %w", err)
			}

			index, err := prepareIndex(ctx, force, log)
			if err != nil {
				return fmt.Errorf("setup: %w", err)
			}
			defer index.Close()

			eng, err := engine.New(engineConfig(chatModel, emb, index))
			if err != nil {
				return fmt.Errorf("setup: %w", err)
			}

			count, err := eng.Build(ctx, docs, func(msg string) { log.Info(msg) })
			if err != nil {
				return fmt.Errorf("setup: %w", err)
			}

			log.Info("setup: index built",
				slog.Int("fragments", count),
				slog.String("backend", indexBackend()),
				slog.String("location", indexLocation()),
			)
			fmt.Printf("Indexed %d fragments (%s at %s). Try `biblica ask \"who led Israel out of Egypt?\"`.\n",
				count, indexBackend(), indexLocation())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Destroy and rebuild an existing index")
	cmd.Flags().BoolVar(&noDownload, "no-download", false, "Never download the corpus; fail over to the placeholder if missing")

	return cmd
}

// prepareIndex readies the index backend for a fresh build. An existing
// non-empty index aborts with guidance unless --force destroys it first.
func prepareIndex(ctx context.Context, force bool, log *slog.Logger) (rag.VectorStore, error) {
	existing, err := openIndex(ctx)
	switch {
	case err == nil:
		count, countErr := existing.Count(ctx)
		if countErr != nil {
			count = 0
		}
		if count > 0 && !force {
			_ = existing.Close()
			return nil, fmt.Errorf("index at %s already holds %d fragments; pass --force to rebuild", indexLocation(), count)
		}
		if destroyErr := existing.Destroy(ctx); destroyErr != nil {
			_ = existing.Close()
			return nil, fmt.Errorf("failed to destroy existing index: %w", destroyErr)
		}
		_ = existing.Close()
		log.Info("setup: destroyed existing index", slog.String("location", indexLocation()))
	case errors.Is(err, rag.ErrIndexNotFound):
		// First-time setup.
	default:
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	return newIndex(ctx)
}
