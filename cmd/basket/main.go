package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"basket/internal/cache"
	"basket/internal/catalog"
	"basket/internal/config"
	"basket/internal/diet"
	"basket/internal/logsink"
	"basket/internal/planner"
	"basket/internal/prefs"
	"basket/internal/recipes"
	"basket/internal/substitutes"
)

func main() {
	_ = godotenv.Load()

	var namespace string
	var profilePath string
	var asJSON bool
	var help bool

	flag.StringVar(&namespace, "namespace", "", "Keep state under this namespace (overrides BASKET_NAMESPACE)")
	flag.StringVar(&namespace, "n", "", "Namespace (short form)")
	flag.StringVar(&profilePath, "profile", "", "Dietary profile JSON (overrides BASKET_PROFILE)")
	flag.BoolVar(&asJSON, "json", false, "Print JSON instead of tables")
	flag.BoolVar(&help, "help", false, "Show help message")
	flag.BoolVar(&help, "h", false, "Show help message")
	flag.Parse()

	if help || flag.NArg() == 0 {
		showHelp(os.Stdout)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if namespace != "" {
		cfg.Namespace = namespace
	}
	if profilePath != "" {
		cfg.Profile = profilePath
	}
	ctx := context.Background()
	closeLogs := setupLogging(ctx, cfg)

	err = run(ctx, cfg, flag.Args(), output{w: os.Stdout, json: asJSON})
	closeLogs()
	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			showHelp(os.Stderr)
			os.Exit(2)
		}
		log.Fatalf("Error: %v", err)
	}
}

// setupLogging installs the default logger. The returned func flushes
// shipped logs.
func setupLogging(ctx context.Context, cfg *config.Config) func() {
	level, _ := cfg.Level()
	text := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(text))
	if cfg.LogContainer == "" {
		return func() {}
	}

	sink, err := logsink.New(ctx, logsink.Config{
		AccountName: cfg.Storage.Account,
		AccountKey:  cfg.Storage.AccountKey,
		Container:   cfg.LogContainer,
		BlobName:    logsink.BlobName(time.Now(), cfg.Namespace),
		Level:       level,
	})
	if err != nil {
		slog.WarnContext(ctx, "log shipping disabled", "container", cfg.LogContainer, "error", err)
		return func() {}
	}
	slog.SetDefault(slog.New(logsink.Tee(text, sink)))
	return func() {
		if err := sink.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to ship logs: %v\n", err)
		}
	}
}

type app struct {
	planner *planner.Planner
	book    *recipes.Book
	catalog *catalog.Store
	store   *prefs.Store
	closer  io.Closer
}

// open wires the planner from cfg.
func open(ctx context.Context, cfg *config.Config) (*app, error) {
	items, err := os.Open(cfg.Catalog.ItemsPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog items: %w", err)
	}
	defer func() { _ = items.Close() }()
	var options io.Reader
	if cfg.Catalog.OptionsPath != "" {
		f, err := os.Open(cfg.Catalog.OptionsPath)
		if err != nil {
			return nil, fmt.Errorf("open catalog options: %w", err)
		}
		defer func() { _ = f.Close() }()
		options = f
	}
	store, err := catalog.Load(items, options)
	if err != nil {
		return nil, err
	}

	book, err := loadBook(cfg.Recipes)
	if err != nil {
		return nil, err
	}
	profile, err := loadProfile(cfg.Profile)
	if err != nil {
		return nil, err
	}

	kv, err := cache.MakeCache(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open state storage: %w", err)
	}
	state := prefs.New(kv, cfg.Namespace)
	created, err := state.Register(ctx)
	if err != nil {
		if c, ok := kv.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}
	if created {
		slog.InfoContext(ctx, "started new namespace", "namespace", cfg.Namespace)
	}

	a := &app{
		book:    book,
		catalog: store,
		store:   state,
		planner: planner.New(ctx, planner.Deps{
			Book:        book,
			Catalog:     store,
			Substitutes: substitutes.Compile(substitutes.DefaultSeed(), store.ResolveID),
			Store:       state,
			Profile:     profile,
		}),
	}
	if c, ok := kv.(io.Closer); ok {
		a.closer = c
	}
	return a, nil
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func loadBook(path string) (*recipes.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recipe book: %w", err)
	}
	defer func() { _ = f.Close() }()
	return recipes.LoadBook(f)
}

// An unset path is the empty profile.
func loadProfile(path string) (diet.Profile, error) {
	if path == "" {
		return diet.Profile{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return diet.Profile{}, fmt.Errorf("open profile: %w", err)
	}
	defer func() { _ = f.Close() }()
	return diet.LoadProfile(f)
}

func showHelp(w io.Writer) {
	fmt.Fprintln(w, "basket - recipe cart shopping list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  basket [-n namespace] [-profile file] [-json] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  recipes                    list recipes in the book")
	fmt.Fprintln(w, "  items                      list catalog ingredients and their ids")
	fmt.Fprintln(w, "  add <title> [servings]     add servings of a recipe (default 1)")
	fmt.Fprintln(w, "  remove <title>             remove a recipe from the cart")
	fmt.Fprintln(w, "  servings <title> <n>       set servings, 0 removes")
	fmt.Fprintln(w, "  cart                       show the cart")
	fmt.Fprintln(w, "  list                       show the shopping list and totals")
	fmt.Fprintln(w, "  conflicts                  show dietary conflicts (preference mode)")
	fmt.Fprintln(w, "  mode [default|preference]  show or set the mode")
	fmt.Fprintln(w, "  toggle                     switch mode")
	fmt.Fprintln(w, "  qty <ingredient> <n>       override a purchase quantity")
	fmt.Fprintln(w, "  sub <ingredient> <id>      replace a conflicting ingredient")
	fmt.Fprintln(w, "  zero <ingredient>          drop a conflicting ingredient")
	fmt.Fprintln(w, "  unresolve <ingredient>     undo a substitution or zero")
	fmt.Fprintln(w, "  reset                      forget all saved state")
	fmt.Fprintln(w, "  namespaces                 list namespaces with saved state")
	fmt.Fprintln(w, "  schema <items|options>     print a catalog JSON schema")
}
