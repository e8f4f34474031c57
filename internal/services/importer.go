package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"dslf/internal/domain/models"
	"dslf/internal/provider"
	"dslf/internal/repository"
	"dslf/internal/storage"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// DefaultImportOutput is the file written by the import command when none is given.
const DefaultImportOutput = "imported-redirects.csv"

const (
	defaultBackoffBase = time.Second
	defaultMaxRetries  = 5
	importFileMode     = 0o644
)

// ImporterOptions - importer tuning.
type ImporterOptions struct {
	// BackoffBase: first wait after a rate-limited page, doubled on every retry.
	BackoffBase time.Duration
	// MaxRetries: retries of one page before the run fails.
	MaxRetries uint64
}

// Importer pulls every link from a provider and writes a configuration file.
type Importer struct {
	provider provider.LinkProvider
	sugar    *zap.SugaredLogger
	opts     ImporterOptions
}

// SkippedLink - provider link left out of the output.
type SkippedLink struct {
	Link   models.ImportedLink
	Reason string
}

// ImportResult - summary of a finished import.
type ImportResult struct {
	// Domains: number of written links per provider domain.
	Domains map[string]int
	// RunID: identifier attached to the run's log records.
	RunID string
	// Output: written file, empty when nothing was written.
	Output string
	// Skipped: links filtered out before writing.
	Skipped []SkippedLink
	// Fetched: importable links returned by the provider.
	Fetched int
	// Written: rows written to Output.
	Written int
	// Pages: provider pages fetched.
	Pages int
}

type importState int

const (
	stateFetching importState = iota
	stateDone
	stateFailed
)

func (s importState) String() string {
	switch s {
	case stateFetching:
		return "fetching"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("importState(%d)", int(s))
	}
}

// NewImporter - constructor for Importer. Zero options take defaults.
func NewImporter(p provider.LinkProvider, opts ImporterOptions, sugar *zap.SugaredLogger) *Importer {
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = defaultBackoffBase
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	return &Importer{provider: p, sugar: sugar, opts: opts}
}

// Import fetches every page, then writes the links to output atomically.
// A failed page fails the run and nothing is written.
func (im *Importer) Import(ctx context.Context, output string) (ImportResult, error) {
	result := ImportResult{RunID: uuid.NewString()}
	sugar := im.sugar.With("run_id", result.RunID)

	var (
		links  []models.ImportedLink
		cursor string
		state  = stateFetching
	)

	sugar.Infow("Fetching links", "page_size", im.provider.PageSize())
	for state == stateFetching {
		page, err := im.fetchPage(ctx, sugar, cursor)
		if err != nil {
			state = stateFailed
			sugar.Errorw("Import failed", "state", state.String(), "page", result.Pages+1, "error", err)
			return ImportResult{RunID: result.RunID}, err
		}

		result.Pages++
		links = append(links, page.Links...)
		sugar.Infow("Fetched batch", "page", result.Pages, "links", len(page.Links), "cursor", page.Cursor)

		if page.Full && page.Cursor != "" {
			cursor = page.Cursor
			continue
		}
		state = stateDone
	}

	result.Fetched = len(links)
	sugar.Infow("Total links fetched", "count", result.Fetched, "state", state.String())

	entries, skipped, domains := filterLinks(links)
	result.Skipped = skipped
	result.Domains = domains
	for _, s := range skipped {
		sugar.Warnw("Skipping link", "path", s.Link.ShortPath, "destination", s.Link.Destination, "reason", s.Reason)
	}

	if len(entries) == 0 {
		sugar.Infow("No links found to export")
		return result, nil
	}

	data, err := repository.Marshal(entries)
	if err != nil {
		return ImportResult{RunID: result.RunID}, fmt.Errorf("serialize imported links: %w", err)
	}
	if err := storage.WriteFileAtomic(output, data, os.FileMode(importFileMode)); err != nil {
		return ImportResult{RunID: result.RunID}, err
	}

	result.Output = output
	result.Written = len(entries)
	for _, d := range sortedDomains(domains) {
		sugar.Infow("Imported domain", "domain", d, "links", domains[d])
	}
	sugar.Infow("Exported redirects", "count", result.Written, "output", output)
	return result, nil
}

// fetchPage fetches one page, retrying only rate-limited attempts with exponential backoff.
func (im *Importer) fetchPage(ctx context.Context, sugar *zap.SugaredLogger, cursor string) (provider.LinkPage, error) {
	var page provider.LinkPage
	attempt := 0

	b := retry.WithMaxRetries(im.opts.MaxRetries, retry.NewExponential(im.opts.BackoffBase))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		p, err := im.provider.FetchPage(ctx, cursor)
		if err != nil {
			if errors.Is(err, provider.ErrRateLimited) {
				sugar.Warnw("Rate limited, backing off", "attempt", attempt, "cursor", cursor)
				return retry.RetryableError(err)
			}
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		if errors.Is(err, provider.ErrRateLimited) {
			return provider.LinkPage{}, fmt.Errorf("giving up after %d attempts: %w", attempt, err)
		}
		return provider.LinkPage{}, err
	}
	return page, nil
}

// filterLinks keeps links that form a loadable configuration; the first of several equal paths wins.
func filterLinks(links []models.ImportedLink) ([]models.RouteEntry, []SkippedLink, map[string]int) {
	entries := make([]models.RouteEntry, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	domains := make(map[string]int)
	var skipped []SkippedLink

	for _, l := range links {
		e := l.RouteEntry()
		if err := repository.CheckEntry(0, e); err != nil {
			skipped = append(skipped, SkippedLink{Link: l, Reason: reasonOf(err)})
			continue
		}
		if _, dup := seen[e.Path]; dup {
			skipped = append(skipped, SkippedLink{Link: l, Reason: repository.DuplicatePath.String()})
			continue
		}
		seen[e.Path] = struct{}{}
		entries = append(entries, e)
		domains[l.Domain]++
	}
	return entries, skipped, domains
}

func reasonOf(err error) string {
	errs := repository.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	return errs[0].Kind.String()
}

func sortedDomains(domains map[string]int) []string {
	names := make([]string, 0, len(domains))
	for d := range domains {
		names = append(names, d)
	}
	sort.Strings(names)
	return names
}
