// Package main is the Kiji CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/kiji/internal/cli"
	"github.com/hyperjump/kiji/internal/config"
	"github.com/hyperjump/kiji/internal/docstore"
	"github.com/hyperjump/kiji/internal/ingest"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/scoring"
	"github.com/hyperjump/kiji/internal/search"
	"github.com/hyperjump/kiji/internal/server"
	"github.com/hyperjump/kiji/internal/storage"
	"github.com/hyperjump/kiji/internal/watcher"
	"github.com/hyperjump/kiji/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kiji/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "kiji server" from the project dir uses the project's
// config (including debug). Returns the config and the path that was loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "search":
		runSearch()
	case "similar":
		runSimilar()
	case "tags":
		runTags()
	case "trending":
		runTrending()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kiji version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: kiji <command> [flags]

Commands:
  server      Start the HTTP API server (and spool watcher, when configured)
  ingest      Ingest one or more JSON batch files
  search      Search articles
  similar     Find articles similar to the given article id
  tags        Show tag frequency aggregation
  trending    Show trending articles
  status      Show article counts and disk usage
  version     Print version`)
}

// Components holds initialized services.
type Components struct {
	Storage     storage.ArticleStore
	Docs        docstore.Store
	Coordinator *ingest.Coordinator
	Service     *search.Service
}

func (c *Components) Close() {
	if c.Docs != nil {
		_ = c.Docs.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	docs, err := docstore.NewBleveStore(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}

	scorer := scoring.NewEngine(cfg.Scoring)
	coordOpts := []ingest.CoordinatorOption{ingest.WithLogger(logger)}
	coordinator := ingest.NewCoordinator(store, docs, scorer, cfg.Ingest.BatchWorkers, coordOpts...)

	svcOpts := []search.ServiceOption{}
	if debug {
		svcOpts = append(svcOpts, search.WithLogger(logger))
	}
	service := search.NewService(docs, store, &cfg.Search, svcOpts...)

	return &Components{
		Storage:     store,
		Docs:        docs,
		Coordinator: coordinator,
		Service:     service,
	}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	spoolCtx, spoolCancel := context.WithCancel(context.Background())
	defer spoolCancel()
	var spool *watcher.SpoolWatcher
	if cfg.Spool.Directory != "" {
		spool = watcher.NewSpoolWatcher(
			cfg.Spool.Directory,
			cfg.Spool.ProcessedSuffix,
			components.Coordinator.IngestBatch,
			watcher.WithLogger(logger),
		)
		if err := spool.Start(spoolCtx); err != nil {
			logger.Fatal("Failed to start spool watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(
		components.Service,
		components.Coordinator,
		components.Storage,
		components.Docs,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if spool != nil {
		spool.Stop()
	}
	spoolCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kiji ingest [flags] <batch.json> [more.json...]")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	batches := make([][]*models.Article, 0, fs.NArg())
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", path, err)
			os.Exit(1)
		}
		var articles []*models.Article
		if err := json.Unmarshal(data, &articles); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to parse %s: %v\n", path, err)
			os.Exit(1)
		}
		batches = append(batches, articles)
	}

	if *serverURL != "" {
		for _, articles := range batches {
			report, err := ingestViaHTTP(*serverURL, articles)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
				os.Exit(1)
			}
			_ = cli.WriteIngestReport(os.Stdout, report, format)
		}
		return
	}

	// Direct storage access (when server is not running).
	components, logger := mustInitialize(*configPath)
	defer logger.Sync()
	defer components.Close()
	for _, articles := range batches {
		report, err := components.Coordinator.IngestBatch(context.Background(), articles)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
			os.Exit(1)
		}
		_ = cli.WriteIngestReport(os.Stdout, report, format)
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	categories := fs.String("categories", "", "comma-separated category hints fused into the query")
	articleType := fs.String("type", "", "filter by article type (newsletter, tutorial, paper)")
	dateFrom := fs.String("date-from", "", "filter: posted on or after (YYYY-MM-DD)")
	dateTo := fs.String("date-to", "", "filter: posted on or before (YYYY-MM-DD)")
	from := fs.Int("from", 0, "result offset")
	size := fs.Int("size", 0, "number of results")
	sortBy := fs.String("sort", "", "sort field: _score, post_date, or combined_score")
	highlight := fs.Bool("highlight", true, "include match highlights")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	query := &models.SearchQuery{
		Query:     strings.TrimSpace(strings.Join(fs.Args(), " ")),
		Type:      *articleType,
		DateFrom:  *dateFrom,
		DateTo:    *dateTo,
		From:      *from,
		Size:      *size,
		SortBy:    *sortBy,
		Highlight: highlight,
	}
	if *categories != "" {
		query.Categories = strings.Split(*categories, ",")
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		// Use HTTP API when server is running (avoids Bleve/SQLite lock conflict).
		response, err = searchViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, logger := mustInitialize(*configPath)
		defer logger.Sync()
		defer components.Close()
		response, err = components.Service.Search(context.Background(), query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteSearchResponse(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runSimilar() {
	fs := flag.NewFlagSet("similar", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	limit := fs.Int("limit", 10, "number of results")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kiji similar [flags] <article-id>")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var out struct {
		Results []*models.SearchResult `json:"results"`
	}
	path := fmt.Sprintf("/api/v1/articles/%s/similar?limit=%d", url.PathEscape(fs.Arg(0)), *limit)
	if err := getJSON(*serverURL+path, &out); err != nil {
		fmt.Fprintf(os.Stderr, "Similar failed: %v\n", err)
		os.Exit(1)
	}
	_ = cli.WriteResults(os.Stdout, out.Results, format)
}

func runTags() {
	fs := flag.NewFlagSet("tags", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	size := fs.Int("size", 0, "max tags to show (0 = all)")
	minCount := fs.Int("min-count", 0, "hide tags with fewer articles")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	vals := url.Values{}
	if *size > 0 {
		vals.Set("size", fmt.Sprint(*size))
	}
	if *minCount > 0 {
		vals.Set("min_count", fmt.Sprint(*minCount))
	}
	var agg models.TagAggregation
	if err := getJSON(*serverURL+"/api/v1/tags/aggregate?"+vals.Encode(), &agg); err != nil {
		fmt.Fprintf(os.Stderr, "Tags failed: %v\n", err)
		os.Exit(1)
	}
	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(agg)
		return
	}
	fmt.Printf("%d tags across %d articles\n", agg.TotalTags, agg.TotalDocuments)
	for _, tc := range agg.Tags {
		fmt.Printf("%6d  %s\n", tc.Count, tc.Tag)
	}
}

func runTrending() {
	fs := flag.NewFlagSet("trending", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	window := fs.String("window", "7d", "trending window (e.g. 7d, 36h)")
	limit := fs.Int("limit", 10, "number of results")
	by := fs.String("by", "combined", "ranking mode: combined or engagement")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	vals := url.Values{}
	vals.Set("window", *window)
	vals.Set("limit", fmt.Sprint(*limit))
	vals.Set("by", *by)
	var out struct {
		Results []*models.SearchResult `json:"results"`
	}
	if err := getJSON(*serverURL+"/api/v1/trending?"+vals.Encode(), &out); err != nil {
		fmt.Fprintf(os.Stderr, "Trending failed: %v\n", err)
		os.Exit(1)
	}
	_ = cli.WriteResults(os.Stdout, out.Results, format)
}

// statusResponse is the shape of GET /status.
type statusResponse struct {
	Articles         int64  `json:"articles"`
	IndexedDocuments uint64 `json:"indexed_documents"`
	DiskUsageBytes   *int64 `json:"disk_usage_bytes,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		if err := getJSON(*serverURL+"/status", &status); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		ctx := context.Background()
		articles, err := components.Storage.CountArticles(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count articles failed: %v\n", err)
			os.Exit(1)
		}
		docs, err := components.Docs.Count(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count documents failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{Articles: articles, IndexedDocuments: docs}
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Printf("articles:           %d   # stored articles\n", status.Articles)
	fmt.Printf("indexed_documents:  %d   # documents in the search index\n", status.IndexedDocuments)
	if status.DiskUsageBytes != nil {
		fmt.Printf("disk_usage_bytes:   %d   # database + index on disk\n", *status.DiskUsageBytes)
	}
}

// mustInitialize loads config and builds components, exiting on failure.
func mustInitialize(configPath string) (*Components, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	return components, logger
}

func ingestViaHTTP(serverURL string, articles []*models.Article) (*models.IngestReport, error) {
	body, err := json.Marshal(articles)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ingest", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var report models.IngestReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &report, nil
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func getJSON(fullURL string, out interface{}) error {
	resp, err := http.Get(fullURL)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
