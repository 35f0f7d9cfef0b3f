package tags

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrIndexUnreadable marks an index file that cannot be opened. Callers
// treat it as "no index here", not as a fatal condition.
var ErrIndexUnreadable = errors.New("tag index unreadable")

// Filter is an exclusion rule: a record is dropped when Field is present
// and its value matches the pattern (anchored at the start).
type Filter struct {
	Field  string
	Regexp *regexp.Regexp
}

// CompileFilters builds exclusion filters from a field→regex map.
func CompileFilters(rules map[string]string) ([]Filter, error) {
	if len(rules) == 0 {
		return nil, nil
	}
	fields := make([]string, 0, len(rules))
	for field := range rules {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	filters := make([]Filter, 0, len(rules))
	for _, field := range fields {
		re, err := regexp.Compile("^(?:" + rules[field] + ")")
		if err != nil {
			return nil, fmt.Errorf("compiling filter for %s: %w", field, err)
		}
		filters = append(filters, Filter{Field: field, Regexp: re})
	}
	return filters, nil
}

func excluded(rec Record, filters []Filter) bool {
	for _, f := range filters {
		if v, ok := rec.Fields[f.Field]; ok && f.Regexp.MatchString(v) {
			return true
		}
	}
	return false
}

// Index is an immutable, queryable view over one parsed index file.
// The derived maps hold positions into Records, so a record with several
// applicable keys is stored once and referenced many times.
type Index struct {
	Records []Record

	bySymbol map[string][]int
	byFile   map[string][]int
	bySuffix map[string][]int
}

// Load parses the index file at path. It returns ErrIndexUnreadable
// (wrapped) when the file cannot be opened.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrIndexUnreadable, err)
	}
	defer f.Close()

	return FromReader(f, filepath.Dir(path)), nil
}

// FromReader parses tag lines from r. Malformed lines and pseudo-tag
// headers ("!_TAG_...") are skipped. rootDir is recorded on every record
// so its relative Filename can later be resolved.
func FromReader(r io.Reader, rootDir string) *Index {
	ix := &Index{
		bySymbol: make(map[string][]int),
		byFile:   make(map[string][]int),
		bySuffix: make(map[string][]int),
	}

	scanner := bufio.NewScanner(r)
	const maxCapacity = 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			continue
		}
		rec.RootDir = rootDir

		i := len(ix.Records)
		ix.Records = append(ix.Records, rec)
		ix.bySymbol[rec.Symbol] = append(ix.bySymbol[rec.Symbol], i)
		ix.byFile[rec.Filename] = append(ix.byFile[rec.Filename], i)
		if suffix := filepath.Ext(rec.Filename); suffix != "" {
			ix.bySuffix[suffix] = append(ix.bySuffix[suffix], i)
		}
	}

	return ix
}

// LoadAll parses several index files concurrently, returning the
// readable ones in input order. Unreadable files are skipped.
func LoadAll(paths []string) []*Index {
	loaded := make([]*Index, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			ix, err := Load(path)
			if err == nil {
				loaded[i] = ix
			}
			return nil
		})
	}
	g.Wait()

	out := loaded[:0]
	for _, ix := range loaded {
		if ix != nil {
			out = append(out, ix)
		}
	}
	return out
}

// BySymbol returns records whose symbol matches name exactly, with the
// exclusion filters applied. An empty result is not an error.
func (ix *Index) BySymbol(name string, filters []Filter) []Record {
	return ix.collect(ix.bySymbol[name], filters)
}

// ByFiles returns records defined in the named files, grouped by
// filename.
func (ix *Index) ByFiles(names []string, filters []Filter) map[string][]Record {
	out := make(map[string][]Record)
	for _, name := range names {
		if recs := ix.collect(ix.byFile[name], filters); len(recs) > 0 {
			out[name] = recs
		}
	}
	return out
}

// AllByFile returns every record in the index, grouped by filename.
func (ix *Index) AllByFile(filters []Filter) map[string][]Record {
	out := make(map[string][]Record)
	for _, rec := range ix.Records {
		if excluded(rec, filters) {
			continue
		}
		out[rec.Filename] = append(out[rec.Filename], rec)
	}
	return out
}

// BySuffix returns records defined in files with the given suffix
// (including the dot, e.g. ".py"), grouped by filename.
func (ix *Index) BySuffix(suffix string, filters []Filter) map[string][]Record {
	out := make(map[string][]Record)
	for _, i := range ix.bySuffix[suffix] {
		rec := ix.Records[i]
		if excluded(rec, filters) {
			continue
		}
		out[rec.Filename] = append(out[rec.Filename], rec)
	}
	return out
}

// Symbols returns the distinct symbol names in the index, sorted. This
// feeds the completion store.
func (ix *Index) Symbols() []string {
	out := make([]string, 0, len(ix.bySymbol))
	for sym := range ix.bySymbol {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

func (ix *Index) collect(positions []int, filters []Filter) []Record {
	var out []Record
	for _, i := range positions {
		if rec := ix.Records[i]; !excluded(rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}

// SortByTagPath orders records for presentation: lexicographic tag-path
// tuples, so members of the same scope sort together.
func SortByTagPath(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return CompareTagPath(recs[i], recs[j]) < 0
	})
}

// Flatten merges grouped lookup results into one presentation-ordered
// slice.
func Flatten(grouped map[string][]Record) []Record {
	var out []Record
	for _, recs := range grouped {
		out = append(out, recs...)
	}
	SortByTagPath(out)
	return out
}
