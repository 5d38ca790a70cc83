// Package main is the Kotae CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/chat"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/crawler"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/feedback"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/pipeline"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/store"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
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
	// API keys usually live in a local .env during development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "crawl":
		runCrawl()
	case "ask":
		runAsk()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func setup(args []string) (*config.Config, string, *zap.Logger) {
	fs := flag.NewFlagSet(args[0], flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args[1:])

	cfg, resolvedPath, err := loadConfig(*configPath)
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
	logger.Info("config loaded",
		zap.String("config_path", resolvedPath),
		zap.Bool("debug", debugMode),
	)
	return cfg, resolvedPath, logger
}

func newEmbedder(ctx context.Context, cfg *config.Config, logger *zap.Logger) (embedding.Embedder, error) {
	var (
		embedder embedding.Embedder
		err      error
	)
	switch cfg.Embedding.Provider {
	case "gemini":
		embedder, err = embedding.NewGemini(ctx, os.Getenv(cfg.Embedding.APIKeyEnv), cfg.Embedding.Model)
	case "openai":
		embedder = embedding.NewOpenAI(os.Getenv(cfg.Embedding.APIKeyEnv))
	case "mock":
		embedder = embedding.NewMockEmbedder(cfg.Store.VectorSize)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	logger.Info("embedder initialized",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model))
	return embedding.NewCached(embedder, 1024), nil
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.VectorStore, error) {
	vs, err := store.NewQdrant(ctx, cfg.Store.Host, cfg.Store.Port, cfg.Store.Collection, uint64(cfg.Store.VectorSize))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}
	logger.Info("vector store initialized",
		zap.String("host", cfg.Store.Host),
		zap.Int("port", cfg.Store.Port),
		zap.String("collection", cfg.Store.Collection))
	return vs, nil
}

// Components holds initialized services for the serving path.
type Components struct {
	Embedder embedding.Embedder
	Store    store.VectorStore
	Encoder  ranking.CrossEncoder
	LLM      llm.Client
	Chat     *chat.Service
	Feedback *feedback.Log
}

func (c *Components) Close() {
	if c.Feedback != nil {
		_ = c.Feedback.Close()
	}
	if c.LLM != nil {
		_ = c.LLM.Close()
	}
	if c.Encoder != nil {
		_ = c.Encoder.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	embedder, err := newEmbedder(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	vs, err := newStore(ctx, cfg, logger)
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}

	var encoder ranking.CrossEncoder
	onnxEncoder, err := ranking.NewONNXCrossEncoder(cfg.Rerank.ModelPath, cfg.Rerank.MaxTokens)
	if err != nil {
		// Falls back to neutral scores; title heuristics still apply.
		logger.Warn("cross-encoder unavailable, reranking by title heuristics only",
			zap.String("model_path", cfg.Rerank.ModelPath), zap.Error(err))
		encoder = &ranking.MockCrossEncoder{}
	} else {
		encoder = onnxEncoder
	}

	client, err := llm.NewGemini(ctx, os.Getenv(cfg.LLM.APIKeyEnv), cfg.LLM.Model)
	if err != nil {
		_ = encoder.Close()
		_ = vs.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	fb, err := feedback.Open(cfg.Feedback.DatabasePath)
	if err != nil {
		_ = client.Close()
		_ = encoder.Close()
		_ = vs.Close()
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to open feedback log: %w", err)
	}

	svc := chat.NewService(
		embedder,
		vs,
		ranking.New(encoder, ranking.WithLogger(logger)),
		client,
		chat.Options{
			NResults:               cfg.Chat.NResults,
			TopK:                   cfg.Chat.TopK,
			MaxQueryLength:         cfg.Chat.MaxQueryLength,
			SuppressUnknownSources: cfg.Chat.SuppressUnknownSourcesOrDefault(),
		},
		logger,
	)

	return &Components{
		Embedder: embedder,
		Store:    vs,
		Encoder:  encoder,
		LLM:      client,
		Chat:     svc,
		Feedback: fb,
	}, nil
}

func runServer() {
	cfg, _, logger := setup(os.Args[1:])
	defer logger.Sync()
	ctx := context.Background()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Chat, components.Feedback, components.Store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

// crawlScope returns the base URL the crawl is restricted to: the configured
// host and path prefix when set, otherwise the seed itself.
func crawlScope(cfg *config.CrawlConfig, seedURL string) string {
	if cfg.AllowedHost == "" {
		return seedURL
	}
	scheme := "https"
	if u, err := url.Parse(seedURL); err == nil && u.Scheme != "" {
		scheme = u.Scheme
	}
	return scheme + "://" + cfg.AllowedHost + cfg.PathPrefix
}

func runCrawl() {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	seed := fs.String("seed", "", "seed URL (overrides config)")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	seedURL := cfg.Crawl.SeedURL
	if *seed != "" {
		seedURL = *seed
	}
	if seedURL == "" {
		fmt.Println("No seed URL: set crawl.seed_url in config or pass --seed")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	embedder, err := newEmbedder(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize embedder", zap.Error(err))
	}
	defer embedder.Close()
	vs, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize vector store", zap.Error(err))
	}
	defer vs.Close()

	p := pipeline.New(embedder, vs, cfg.Crawl.IDPrefix, pipeline.WithLogger(logger))
	c := crawler.New(
		crawler.NewHTTPFetcher(cfg.Crawl.FetchTimeout()),
		p,
		crawler.SiteAllow(crawlScope(&cfg.Crawl, seedURL)),
		cfg.Crawl.MaxDepth,
		cfg.Crawl.BatchSize,
		crawler.WithLogger(logger),
		crawler.WithDelay(cfg.Crawl.PolitenessDelay()),
	)

	logger.Info("starting crawl", zap.String("seed", seedURL), zap.Int("max_depth", cfg.Crawl.MaxDepth))
	if err := c.Crawl(ctx, seedURL); err != nil {
		logger.Fatal("Crawl failed", zap.Error(err))
	}

	count, err := vs.Count(ctx)
	if err != nil {
		logger.Warn("failed to count indexed chunks", zap.Error(err))
		return
	}
	fmt.Printf("Crawl complete: %d chunks indexed\n", count)
}

// buildQuestion joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	question := buildQuestion(fs.Args())
	if question == "" {
		fmt.Println("Usage: kotae ask [flags] <question>")
		os.Exit(1)
	}

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	response, err := components.Chat.Answer(ctx, question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid question: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(response.Answer)
	if len(response.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range response.Sources {
			fmt.Printf("  %s\n", src)
		}
	}
}

func runStatus() {
	cfg, _, logger := setup(os.Args[1:])
	defer logger.Sync()
	ctx := context.Background()

	vs, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize vector store", zap.Error(err))
	}
	defer vs.Close()

	count, err := vs.Count(ctx)
	if err != nil {
		fmt.Printf("Failed to count chunks: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Collection: %s\n", cfg.Store.Collection)
	fmt.Printf("Chunks:     %d\n", count)

	fb, err := feedback.Open(cfg.Feedback.DatabasePath)
	if err == nil {
		defer fb.Close()
		if fbCount, err := fb.Count(ctx); err == nil {
			fmt.Printf("Feedback:   %d\n", fbCount)
		}
		if recent, err := fb.Recent(ctx, 5); err == nil && len(recent) > 0 {
			fmt.Println("\nRecent feedback:")
			for _, entry := range recent {
				fmt.Printf("  [%s] %s — %s\n",
					entry.Rating,
					entry.CreatedAt.Format("2006-01-02 15:04"),
					utils.Truncate(entry.Question, 60))
			}
		}
	}
}

func printUsage() {
	fmt.Println(`kotae - Handbook chatbot over crawled documentation

Usage:
  kotae server [flags]           Start the HTTP API server
  kotae crawl [flags]            Crawl and index the configured site
  kotae ask [flags] <question>   Ask a question from the command line
  kotae status [flags]           Show index and feedback counts
  kotae version                  Show version
  kotae help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging

Crawl Flags:
  --config string    Config file path
  --debug            Enable debug logging
  --seed string      Seed URL (overrides crawl.seed_url in config)

Ask Flags:
  --config string    Config file path
  --debug            Enable debug logging

Examples:
  kotae crawl --seed https://handbook.example.com/
  kotae server
  kotae ask how many vacation days do I get
  kotae status`)
}
