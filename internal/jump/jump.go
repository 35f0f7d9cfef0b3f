// Package jump ties the lookup pipeline together: search-path
// discovery, index queries through the cache, tag-path resolution to a
// buffer position, and history recording.
package jump

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"tagnav/internal/buffer"
	"tagnav/internal/cache"
	"tagnav/internal/config"
	"tagnav/internal/nav"
	"tagnav/internal/searchpath"
	"tagnav/internal/tagpath"
	"tagnav/internal/tags"
)

// ErrNotFound means no index holds a definition for the symbol. Shown
// as a status message.
var ErrNotFound = errors.New("symbol not found")

// Resolver answers definition and symbol-listing queries.
type Resolver struct {
	Config  config.Config
	Cache   *cache.Service
	Logger  *slog.Logger
	Filters []tags.Filter

	// ProjectFolders are the open project roots, used for search-path
	// fallback and cache keying.
	ProjectFolders []string
}

// NewResolver builds a Resolver, compiling the configured exclusion
// filters.
func NewResolver(cfg config.Config, svc *cache.Service, logger *slog.Logger, folders []string) (*Resolver, error) {
	filters, err := tags.CompileFilters(cfg.Filters)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		Config:         cfg,
		Cache:          svc,
		Logger:         logger,
		Filters:        filters,
		ProjectFolders: folders,
	}, nil
}

func (r *Resolver) searchOptions() searchpath.Options {
	return searchpath.Options{
		TagFile:        r.Config.TagFile,
		ExtraTagFiles:  r.Config.ExtraTagFiles,
		ExtraTagPaths:  r.Config.ExtraTagPaths,
		ProjectFolders: r.ProjectFolders,
	}
}

// Definitions returns the candidate definitions for symbol, resolved
// against the indexes applying to sourceFile. Indexes are scanned in
// precedence order; the first non-empty result wins and is returned in
// presentation order. Multiple candidates are a selection list for the
// caller, not an error.
func (r *Resolver) Definitions(symbol, sourceFile string) ([]tags.Record, error) {
	paths, err := searchpath.Resolve(sourceFile, r.searchOptions())
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		ix, err := tags.Load(path)
		if err != nil {
			if errors.Is(err, tags.ErrIndexUnreadable) {
				continue
			}
			return nil, err
		}

		recs := ix.BySymbol(symbol, r.Filters)
		if len(recs) == 0 {
			continue
		}
		tags.SortByTagPath(recs)
		r.Logger.Debug("symbol resolved", "symbol", symbol, "index", path, "candidates", len(recs))
		return recs, nil
	}

	return nil, fmt.Errorf("%q: %w", symbol, ErrNotFound)
}

// SymbolsInFile lists the definitions in sourceFile's own translation
// unit, cached per project root.
func (r *Resolver) SymbolsInFile(sourceFile string) ([]tags.Record, error) {
	tagsFile, err := searchpath.FindTagsFileAbove(sourceFile, r.Config.TagFile)
	if err != nil {
		return nil, err
	}

	files := searchpath.FilesToSearch(sourceFile, tagsFile, false)
	key := strings.Join(files, ",")
	return r.cachedLookup(sourceFile, key, func(ix *tags.Index) map[string][]tags.Record {
		return ix.ByFiles(files, r.Filters)
	})
}

// SymbolsForSuffix lists the definitions in every indexed file sharing
// sourceFile's extension, cached per project root.
func (r *Resolver) SymbolsForSuffix(sourceFile string) ([]tags.Record, error) {
	suffix := filepath.Ext(sourceFile)
	return r.cachedLookup(sourceFile, suffix, func(ix *tags.Index) map[string][]tags.Record {
		return ix.BySuffix(suffix, r.Filters)
	})
}

// SymbolsInProject lists every definition in the nearest index, cached
// per project root.
func (r *Resolver) SymbolsInProject(sourceFile string) ([]tags.Record, error) {
	return r.cachedLookup(sourceFile, "*", func(ix *tags.Index) map[string][]tags.Record {
		return ix.AllByFile(r.Filters)
	})
}

func (r *Resolver) cachedLookup(sourceFile, key string, query func(*tags.Index) map[string][]tags.Record) ([]tags.Record, error) {
	root := searchpath.FindTopFolder(r.ProjectFolders, sourceFile)

	grouped, err := r.Cache.GetOrCompute(root, key, func() (cache.Grouped, error) {
		tagsFile, err := searchpath.FindTagsFileAbove(sourceFile, r.Config.TagFile)
		if err != nil {
			return nil, err
		}
		ix, err := tags.Load(tagsFile)
		if err != nil {
			return nil, err
		}
		r.Logger.Debug("symbols loaded from index", "index", tagsFile, "key", key)
		return cache.Grouped(query(ix)), nil
	})
	if err != nil {
		return nil, err
	}

	return tags.Flatten(grouped), nil
}

// Target computes the selection for a resolved definition within its
// buffer. Line locators select the line itself; pattern locators follow
// the tag path and then locate the pattern. Resolution never fails: the
// worst case selects the buffer start.
func Target(src buffer.Source, rec tags.Record) buffer.Region {
	if rec.Locator.Kind == tags.LocatorLine {
		return src.LineAt(lineOffset(src, rec.Locator.Line))
	}

	lookFrom := tagpath.Follow(src, rec.TagPath, rec.Locator.Pattern)
	if r, ok := src.Find(rec.Locator.Pattern, lookFrom, true); ok {
		return r
	}
	if lookFrom > 0 {
		return src.LineAt(lookFrom + 1)
	}
	return buffer.Region{}
}

// lineOffset returns the offset of the start of a 1-based line.
func lineOffset(src buffer.Source, line int) int {
	offset := 0
	for i := 1; i < line; i++ {
		r := src.LineAt(offset)
		if r.End >= src.Size() {
			break
		}
		offset = r.End + 1
	}
	return offset
}

// JumpTo opens a definition's file and, once loaded, resolves its
// position. The departure point is pushed onto the jump history so
// go-back returns there. done receives the file path and the selection;
// it runs exactly once.
func (r *Resolver) JumpTo(ctx context.Context, opener Opener, hist *nav.History, from nav.Entry, rec tags.Record, done func(path string, sel buffer.Region)) error {
	path := filepath.Join(rec.RootDir, rec.Filename)

	view, err := opener.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	hist.RecordJump(from)

	WhenReady(ctx, view, func(src buffer.Source) {
		sel := Target(src, rec)
		if done != nil {
			done(path, sel)
		}
	})
	return nil
}
