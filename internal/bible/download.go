package bible

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// DefaultCorpusURL is the canonical location of the King James Version
// corpus in the scrollmapper bible_databases JSON format.
const DefaultCorpusURL = "https://github.com/scrollmapper/bible_databases/raw/refs/heads/master/formats/json/KJV.json"

// Download fetches the corpus JSON from url and writes it to dest.
// The body is validated as JSON and written to a temporary file that is
// renamed into place, so dest never holds a partial download. Parent
// directories of dest are created as needed.
func Download(ctx context.Context, client *http.Client, url, dest string) error {
	if client == nil {
		client = http.DefaultClient
	}
	if url == "" {
		url = DefaultCorpusURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("bible: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("bible: downloading corpus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bible: downloading corpus: unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("bible: reading corpus body: %w", err)
	}
	if !json.Valid(body) {
		return fmt.Errorf("bible: %s: %w", url, ErrParse)
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("bible: creating corpus directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("bible: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("bible: writing corpus: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("bible: closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("bible: moving corpus into place: %w", err)
	}

	return nil
}
