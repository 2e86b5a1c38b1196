package cli

import (
	"context"
	"os"
	"time"

	"github.com/thebardchat/angel-cloud/pkg/adapter"
	"github.com/thebardchat/angel-cloud/pkg/repository"
	"github.com/thebardchat/angel-cloud/pkg/usecase/safety"
	"github.com/thebardchat/angel-cloud/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Logging
	logLevel  string
	logFormat string

	// Store
	storeAddr    string
	storeTimeout time.Duration

	// Generation
	ollamaAddr    string
	ollamaModel   string
	ollamaTimeout time.Duration

	// Safety
	lexiconPath string

	// Archive
	archiveDir string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("ANGEL_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console or json)",
			Value:       "console",
			Sources:     cli.EnvVars("ANGEL_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
		&cli.StringFlag{
			Name:        "store-addr",
			Usage:       "Weaviate address backing all corpora",
			Value:       "http://localhost:8080",
			Sources:     cli.EnvVars("ANGEL_STORE_ADDR"),
			Destination: &cfg.storeAddr,
		},
		&cli.DurationFlag{
			Name:        "store-timeout",
			Usage:       "Per-call deadline for store operations",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("ANGEL_STORE_TIMEOUT"),
			Destination: &cfg.storeTimeout,
		},
	}
}

// ollamaFlags returns flags for the generation backend with destination config
func ollamaFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "ollama-addr",
			Usage:       "Ollama server address",
			Value:       "http://localhost:11434",
			Sources:     cli.EnvVars("ANGEL_OLLAMA_ADDR"),
			Destination: &cfg.ollamaAddr,
		},
		&cli.StringFlag{
			Name:        "model",
			Usage:       "Generation model name",
			Value:       "llama3.2:3b",
			Sources:     cli.EnvVars("ANGEL_MODEL"),
			Destination: &cfg.ollamaModel,
		},
		&cli.DurationFlag{
			Name:        "ollama-timeout",
			Usage:       "End-to-end deadline for one generation call",
			Value:       120 * time.Second,
			Sources:     cli.EnvVars("ANGEL_OLLAMA_TIMEOUT"),
			Destination: &cfg.ollamaTimeout,
		},
	}
}

// safetyFlags returns flags for the crisis screen with destination config
func safetyFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "lexicon",
			Usage:       "Path to a YAML lexicon overriding the built-in word lists",
			Sources:     cli.EnvVars("ANGEL_LEXICON"),
			Destination: &cfg.lexiconPath,
		},
	}
}

// archiveFlags returns flags for transcript and export storage
func archiveFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-dir",
			Usage:       "Directory for transcripts and exports",
			Value:       "archive",
			Sources:     cli.EnvVars("ANGEL_ARCHIVE_DIR"),
			Destination: &cfg.archiveDir,
		},
	}
}

// setupLogging installs the configured logger as the process default and
// attaches it to the context. Logs go to stderr so stdout stays clean for
// command output and the MCP protocol.
func (cfg *config) setupLogging(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, cfg.logFormat, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newStore creates the Weaviate-backed store
func (cfg *config) newStore() (repository.Store, error) {
	return repository.New(cfg.storeAddr, repository.WithTimeout(cfg.storeTimeout))
}

// newGenerator creates the Ollama adapter
func (cfg *config) newGenerator() *adapter.Ollama {
	return adapter.NewOllama(cfg.ollamaAddr,
		adapter.WithOllamaModel(cfg.ollamaModel),
		adapter.WithOllamaTimeout(cfg.ollamaTimeout),
	)
}

// newClassifier creates the safety classifier, wired to record crisis events
// through recorder. An empty lexicon path selects the built-in word lists.
func (cfg *config) newClassifier(recorder safety.CrisisRecorder) (*safety.Classifier, error) {
	if cfg.lexiconPath == "" {
		return safety.New(nil, recorder), nil
	}

	lex, err := safety.LoadLexicon(cfg.lexiconPath)
	if err != nil {
		return nil, err
	}
	return safety.New(lex, recorder), nil
}

// newArchive creates the file archive for transcripts and exports
func (cfg *config) newArchive() adapter.Archive {
	return adapter.NewFileArchive(cfg.archiveDir)
}
