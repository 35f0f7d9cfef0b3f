package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tagnav/internal/cache"
	"tagnav/internal/complete"
	"tagnav/internal/config"
	"tagnav/internal/jump"
	"tagnav/internal/logging"
	"tagnav/internal/rebuild"
	"tagnav/internal/tags"
)

var logger *slog.Logger

const version = "0.3.0"

func main() {
	logger = logging.Default("tagnav")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "lookup":
		runLookup(os.Args[2:])

	case "symbols":
		runSymbols(os.Args[2:])

	case "rebuild":
		runRebuild(os.Args[2:])

	case "complete":
		runComplete(os.Args[2:])

	case "version":
		fmt.Printf("tagnav v%s\n", version)

	case "help", "-h", "--help":
		printUsage()

	default:
		logger.Error("unknown command", "command", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

func newResolver(cfg config.Config) *jump.Resolver {
	r, err := jump.NewResolver(cfg, cache.NewService(), logger, nil)
	if err != nil {
		logger.Error("invalid exclusion filter", "error", err)
		os.Exit(1)
	}
	return r
}

func runLookup(args []string) {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	file := fs.String("file", "", "Source file the lookup starts from (default: current directory)")
	fs.StringVar(file, "f", "", "Short for --file")
	jsonOutput := fs.Bool("json", false, "Output candidates as JSON")
	fs.Parse(args)

	if fs.NArg() < 1 {
		logger.Error("lookup needs a symbol argument")
		os.Exit(1)
	}
	symbol := fs.Arg(0)

	source, err := contextFile(*file)
	if err != nil {
		logger.Error("invalid source file", "error", err)
		os.Exit(1)
	}

	cfg := loadConfig()
	r := newResolver(cfg)

	recs, err := r.Definitions(symbol, source)
	if err != nil {
		logger.Error("lookup failed", "symbol", symbol, "error", err)
		os.Exit(1)
	}

	printRecords(recs, *jsonOutput, true)
}

func runSymbols(args []string) {
	fs := flag.NewFlagSet("symbols", flag.ExitOnError)
	suffix := fs.Bool("suffix", false, "List symbols from every file sharing the extension")
	project := fs.Bool("project", false, "List every symbol in the nearest index")
	jsonOutput := fs.Bool("json", false, "Output symbols as JSON")
	fs.Parse(args)

	file := ""
	if fs.NArg() > 0 {
		file = fs.Arg(0)
	}
	source, err := contextFile(file)
	if err != nil {
		logger.Error("invalid source file", "error", err)
		os.Exit(1)
	}

	cfg := loadConfig()
	r := newResolver(cfg)

	var recs []tags.Record
	switch {
	case *project:
		recs, err = r.SymbolsInProject(source)
	case *suffix:
		recs, err = r.SymbolsForSuffix(source)
	default:
		recs, err = r.SymbolsInFile(source)
	}
	if err != nil {
		logger.Error("listing symbols failed", "file", source, "error", err)
		os.Exit(1)
	}

	tags.SortByTagPath(recs)
	printRecords(recs, *jsonOutput, *suffix || *project)
}

func runRebuild(args []string) {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	recursive := fs.Bool("recursive", false, "Recursive scan (overrides TAGNAV_RECURSIVE)")
	fs.BoolVar(recursive, "R", false, "Short for --recursive")
	fs.Parse(args)

	cfg := loadConfig()
	if *recursive {
		cfg.Recursive = true
	}

	if !rebuild.Available(cfg.Command) {
		logger.Error("index generator not found", "command", cfg.Command,
			"install", "apt install universal-ctags / brew install universal-ctags")
		os.Exit(1)
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			logger.Error("invalid path", "path", p, "error", err)
			os.Exit(1)
		}
		paths[i] = abs
	}

	var completions rebuild.CompletionStore
	if cfg.CompletionDB != "" {
		store, err := complete.Open(cfg.CompletionDB)
		if err != nil {
			logger.Error("opening completion store failed", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		completions = store
	}

	orch := rebuild.New(cache.NewService(), completions, logger)
	results, err := orch.Start(context.Background(), rebuild.Request{
		Paths:     paths,
		TagFile:   cfg.TagFile,
		Recursive: cfg.Recursive,
		Command:   cfg.Command,
	})
	if err != nil {
		logger.Error("rebuild rejected", "error", err)
		os.Exit(1)
	}

	res := <-results
	for _, built := range res.Built {
		fmt.Println(built)
	}
	if res.Err != nil {
		logger.Error("rebuild failed", "error", res.Err)
		os.Exit(1)
	}
	logger.Info("rebuild complete", "indexes", len(res.Built))
}

func runComplete(args []string) {
	fs := flag.NewFlagSet("complete", flag.ExitOnError)
	file := fs.String("file", "", "Source file whose index seeds the store when empty")
	limit := fs.Int("limit", 0, "Maximum number of completions (default: 50)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		logger.Error("complete needs a prefix argument")
		os.Exit(1)
	}
	prefix := fs.Arg(0)

	cfg := loadConfig()
	if cfg.CompletionDB == "" {
		logger.Error("no completion store configured, set TAGNAV_COMPLETION_DB")
		os.Exit(1)
	}

	store, err := complete.Open(cfg.CompletionDB)
	if err != nil {
		logger.Error("opening completion store failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	count, err := store.Count()
	if err != nil {
		logger.Error("reading completion store failed", "error", err)
		os.Exit(1)
	}
	if count == 0 {
		if err := seedCompletions(store, cfg, *file); err != nil {
			logger.Error("seeding completion store failed", "error", err)
			os.Exit(1)
		}
	}

	words, err := store.Complete(prefix, *limit)
	if err != nil {
		logger.Error("completion failed", "error", err)
		os.Exit(1)
	}
	for _, w := range words {
		fmt.Println(w)
	}
}

// seedCompletions fills an empty store with the distinct symbols of the
// index nearest to file.
func seedCompletions(store *complete.Store, cfg config.Config, file string) error {
	source, err := contextFile(file)
	if err != nil {
		return err
	}

	r := newResolver(cfg)
	recs, err := r.SymbolsInProject(source)
	if err != nil {
		return err
	}

	symbols := make([]string, 0, len(recs))
	for _, rec := range recs {
		symbols = append(symbols, rec.Symbol)
	}
	logger.Info("seeding completion store", "symbols", len(symbols))
	return store.Load(symbols)
}

// contextFile resolves the source-file argument lookups walk up from.
// Empty means the current directory itself, so an index sitting in the
// cwd is the first candidate.
func contextFile(file string) (string, error) {
	if file == "" {
		return os.Getwd()
	}
	return filepath.Abs(file)
}

func printRecords(recs []tags.Record, jsonOutput, showPath bool) {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(recs); err != nil {
			logger.Error("encoding JSON failed", "error", err)
			os.Exit(1)
		}
		return
	}

	for _, rec := range recs {
		rows := tags.FormatForList(rec, showPath)
		fmt.Println(rows[0])
		for _, row := range rows[1:] {
			fmt.Printf("\t%s\n", row)
		}
	}
}

func printUsage() {
	fmt.Println(`tagnav - ctags index lookup and navigation

Usage:
  tagnav lookup [options] <symbol>     Resolve a symbol to its definitions
  tagnav symbols [options] [file]      List symbols near a source file
  tagnav rebuild [options] [paths...]  Regenerate indexes with ctags
  tagnav complete [options] <prefix>   Prefix-complete symbol names
  tagnav version                       Print version
  tagnav help                          Show this help

Lookup Options:
  --file, -f     Source file the lookup starts from (default: cwd)
  --json         Output candidates as JSON

Symbols Options:
  --suffix       Symbols from every file sharing the extension
  --project      Every symbol in the nearest index
  --json         Output symbols as JSON

Rebuild Options:
  --recursive, -R  Recursive scan instead of an explicit file list

Complete Options:
  --file         Source file whose index seeds an empty store
  --limit        Maximum completions (default: 50)

Environment Variables:
  TAGNAV_TAG_FILE             Index filename [default: tags]
  TAGNAV_EXTRA_TAG_FILES      Comma-separated extra index filenames
  TAGNAV_EXTRA_TAG_PATHS      Comma-separated absolute index paths
  TAGNAV_COMMAND              Generator command [default: ctags]
  TAGNAV_RECURSIVE            Recursive generator scan [default: true]
  TAGNAV_MOD_HISTORY_LIMIT    Modification-history cap [default: 100]
  TAGNAV_MOD_AREA_THRESHOLD   Modification-area distance [default: 40]
  TAGNAV_COMPLETION_DB        Completion store path (sqlite)
  TAGNAV_DEBUG                Verbose resolution logging
  TAGNAV_LOG_LEVEL            Log level (debug, info, warn, error)

Requirements:
  universal-ctags for index generation (rebuild).

Examples:
  tagnav rebuild -R .
  tagnav lookup --file src/app.py handle_request
  tagnav symbols --suffix src/app.py
  tagnav complete --file src/app.py handle`)
}
