package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"shelfarr/internal/catalog"
	"shelfarr/internal/config"
	"shelfarr/internal/domain"
	"shelfarr/internal/library"
	"shelfarr/internal/notify"
	"shelfarr/internal/provider"
	"shelfarr/internal/store"
	"shelfarr/internal/tui"
	"shelfarr/internal/view"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var (
		showVersion bool
		reconfigure bool
		clearCache  bool
		authorID    string
		seriesID    string
		searchTerm  string
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&reconfigure, "reconfigure", false, "discard saved server settings and run setup again")
	flag.BoolVar(&clearCache, "clear-cache", false, "delete the persisted context cache before starting")
	flag.StringVar(&authorID, "author", "", "open an author's bibliography")
	flag.StringVar(&seriesID, "series", "", "open a series")
	flag.StringVar(&searchTerm, "search", "", "open search results for a term")
	flag.Parse()

	if showVersion {
		fmt.Printf("shelfarr %s\n", Version)
		return
	}

	if err := run(reconfigure, clearCache, authorID, seriesID, searchTerm); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(reconfigure, clearCache bool, authorID, seriesID, searchTerm string) error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if reconfigure {
		if err := config.ClearProviderConfig(); err != nil {
			return fmt.Errorf("failed to reset provider settings: %w", err)
		}
		cfg.Provider = config.ProviderConfig{}
	}
	if clearCache {
		if err := config.ClearCache(cfg); err != nil {
			return err
		}
		fmt.Println("Cache cleared.")
	}

	// Setup logger
	logger, err := config.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = config.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting shelfarr", "version", Version)

	// Check if configured
	if !cfg.IsConfigured() {
		return runSetupFlow(cfg)
	}

	// Provider client serves both the catalog reads and library mutations
	client := provider.NewClient(cfg.Provider.URL, cfg.Provider.APIKey, logger)

	// Persistent context store, namespaced per provider
	ctxStore, err := store.NewContextStore(cfg.Cache.Dir, cfg.Provider.URL)
	if err != nil {
		logger.Warn("failed to open context store, running without persistence", "error", err)
		ctxStore, _ = store.NewContextStore("", "")
	}
	defer ctxStore.Close()

	relay := tui.NewRelay()

	cache := library.NewCache()
	cache.Subscribe(relay.ContextChanged)

	ttl := notify.DefaultTTL
	if cfg.Notifications.TTLSeconds > 0 {
		ttl = time.Duration(cfg.Notifications.TTLSeconds) * time.Second
	}
	queue := notify.NewQueue(ttl, relay.NotificationsChanged)

	ctrl := library.NewController(client, cache, queue, logger)

	svc := catalog.NewService(client, ctxStore, cache, logger)
	ctrl.SetRefresher(svc)
	ctrl.SetInvalidateHook(func(keys []domain.ContextKey) {
		// Library-wide listings are fetched per visit; dropping the
		// persisted copies is enough to force a refetch.
		for _, key := range keys {
			ctxStore.InvalidateContext(key)
		}
	})

	var initialKey domain.ContextKey
	switch {
	case authorID != "":
		initialKey = domain.AuthorContext(authorID)
	case seriesID != "":
		initialKey = domain.SeriesContext(seriesID)
	case searchTerm != "":
		initialKey = domain.SearchContext(searchTerm)
	}

	model := tui.NewModel(svc, ctrl, queue, initialKey, cfg.UI.GridColumns, logger)
	model.ShowBadges = cfg.UI.ShowOwnedBadges
	model.ConfirmOnRemove = cfg.UI.ConfirmOnRemove
	if cfg.UI.DefaultView == "list" {
		model.DefaultViewMode = view.ViewList
	}
	if !cfg.UI.MonitorNewBooks {
		monitored := false
		model.AddOpts = domain.AddOptions{Monitored: &monitored}
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)
	relay.Attach(p)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow handles the initial setup when not configured
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to Shelfarr!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	var serverURL string
	for {
		fmt.Print("Enter your server URL (e.g., http://192.168.1.100:8787): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		serverURL = strings.TrimSpace(input)
		if serverURL != "" {
			break
		}
		fmt.Println("Server URL cannot be empty. Please try again.")
	}

	fmt.Print("Enter your API key (input hidden): ")
	keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	apiKey := strings.TrimSpace(string(keyBytes))
	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	cfg.Provider.URL = serverURL
	cfg.Provider.APIKey = apiKey

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run shelfarr again to start the application.")

	return nil
}
