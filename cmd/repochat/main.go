package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/repochat/repochat/internal/answer"
	"github.com/repochat/repochat/internal/config"
	"github.com/repochat/repochat/internal/embed"
	"github.com/repochat/repochat/internal/session"
	"github.com/repochat/repochat/internal/types"
	"github.com/repochat/repochat/internal/vectorstore"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	help := flag.Bool("help", false, "Show help message")
	version := flag.Bool("version", false, "Show version information")

	flag.Parse()

	if *help {
		showHelp()
		os.Exit(0)
	}
	if *version {
		fmt.Println("repochat v0.1.0")
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		showHelp()
		os.Exit(1)
	}

	logger := newLogger(*debug)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if *debug {
		cfg.Server.Debug = true
	}

	args := flag.Args()
	subcommand := args[0]
	subcommandArgs := args[1:]

	switch subcommand {
	case "config":
		handleConfigCommand(cfg)
	case "load":
		handleLoadCommand(cfg, logger, subcommandArgs)
	case "ask":
		handleAskCommand(cfg, logger, subcommandArgs)
	case "chat":
		handleChatCommand(cfg, logger, subcommandArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", subcommand)
		showHelp()
		os.Exit(1)
	}
}

func showHelp() {
	helpText := `repochat - ask questions about any public repository

Usage:
  repochat [flags] <command> [arguments]

Flags:
  --config string   Path to config file
  --debug           Enable debug logging
  --help            Show this help message
  --version         Show version information

Commands:
  config                 Show current configuration
  load <url>             Clone and index a repository, print its stats
  ask <url> <question>   Index a repository and answer one question
  chat <url>             Index a repository and start an interactive chat
`
	fmt.Print(helpText)
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func newSession(cfg *config.Config, logger zerolog.Logger) *session.Session {
	store, err := vectorstore.NewChromaStore(cfg.ChromaDB.URL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create vector store client")
	}

	embedder, err := embed.Select(cfg.Embedding, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to select embedding backend")
	}

	completer := answer.NewOpenAICompleter(cfg.LLM)
	return session.New(cfg, store, embedder, completer, logger)
}

func handleConfigCommand(cfg *config.Config) {
	fmt.Println("Current configuration:")
	fmt.Printf("ChromaDB URL: %s\n", cfg.ChromaDB.URL)
	fmt.Printf("LLM: %s via %s\n", cfg.LLM.Model, cfg.LLM.BaseURL)
	if cfg.LLM.APIKey != "" {
		fmt.Println("LLM API key: [set]")
	} else {
		fmt.Println("LLM API key: [not set]")
	}
	fmt.Printf("Chunk size/overlap: %d/%d\n", cfg.Chunk.Size, cfg.Chunk.Overlap)
	fmt.Printf("Retrieval k: %d (bounds %d..%d)\n", cfg.Retrieval.K, cfg.Retrieval.MinK, cfg.Retrieval.MaxK)
	fmt.Printf("Fetch timeout: %s\n", cfg.Fetch.Timeout)
}

func handleLoadCommand(cfg *config.Config, logger zerolog.Logger, args []string) {
	if len(args) == 0 {
		logger.Fatal().Msg("usage: repochat load <repository-url>")
	}

	sess := newSession(cfg, logger)
	defer sess.Reset()

	if err := sess.Load(context.Background(), args[0]); err != nil {
		logger.Fatal().Err(err).Msg("failed to load repository")
	}
	printStats(sess.RepoName(), sess.Stats())
	fmt.Printf("Collection: %s\n", sess.Collection())
}

func handleAskCommand(cfg *config.Config, logger zerolog.Logger, args []string) {
	if len(args) < 2 {
		logger.Fatal().Msg("usage: repochat ask <repository-url> <question>")
	}

	sess := newSession(cfg, logger)
	defer sess.Reset()

	if err := sess.Load(context.Background(), args[0]); err != nil {
		logger.Fatal().Err(err).Msg("failed to load repository")
	}

	question := strings.Join(args[1:], " ")
	printAnswer(sess.Ask(context.Background(), question, cfg.Retrieval.K))
}

func handleChatCommand(cfg *config.Config, logger zerolog.Logger, args []string) {
	if len(args) == 0 {
		logger.Fatal().Msg("usage: repochat chat <repository-url>")
	}

	sess := newSession(cfg, logger)
	defer sess.Reset()

	fmt.Printf("Loading %s ...\n", args[0])
	if err := sess.Load(context.Background(), args[0]); err != nil {
		logger.Fatal().Err(err).Msg("failed to load repository")
	}
	printStats(sess.RepoName(), sess.Stats())
	fmt.Println("\nAsk anything about the codebase. Type 'stats' for the summary, 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			break
		}
		if strings.EqualFold(input, "stats") {
			printStats(sess.RepoName(), sess.Stats())
			continue
		}

		printAnswer(sess.Ask(context.Background(), input, cfg.Retrieval.K))
	}
}

func printAnswer(ans types.Answer) {
	fmt.Printf("\n%s\n", ans.Text)
	if len(ans.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range ans.Sources {
			fmt.Printf("  %-50s (distance %.4f)\n", src.Path, src.Distance)
		}
	}
}

func printStats(name string, stats types.RepoStats) {
	fmt.Printf("\n%s: %d files, %d lines\n", name, stats.TotalFiles, stats.TotalLines)

	exts := make([]string, 0, len(stats.Extensions))
	for ext := range stats.Extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		es := stats.Extensions[ext]
		fmt.Printf("  %-12s %4d files %8d lines\n", ext, es.Count, es.Lines)
	}
}
