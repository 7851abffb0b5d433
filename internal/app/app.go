// Package app wires configuration into the deck pipeline for both the HTTP
// server and the CLI.
package app

import (
	"github.com/youruser/swuproxy/internal/config"
	"github.com/youruser/swuproxy/internal/deck"
	imagepkg "github.com/youruser/swuproxy/internal/image"
	"github.com/youruser/swuproxy/internal/pipeline"
	"github.com/youruser/swuproxy/internal/util"
	"github.com/youruser/swuproxy/pkg/logger"
)

type App struct {
	Config   *config.Config
	Log      *logger.Logger
	Resolver *deck.Resolver
	Images   *imagepkg.Fetcher
	Pipeline *pipeline.Pipeline
}

// NewLogger builds the process logger from the log settings.
func NewLogger(cfg *config.Config, prefix string, opts ...logger.Option) *logger.Logger {
	log := logger.New(append([]logger.Option{logger.WithPrefix(prefix)}, opts...)...)
	log.SetVerbose(cfg.Log.Verbose)
	if cfg.Log.Debug {
		log.SetLevel(logger.LevelTrace)
	}
	return log
}

func New(cfg *config.Config, log *logger.Logger) *App {
	client := util.NewClient(cfg.SWUDB.Timeout)
	resolver := deck.NewResolver(cfg.SWUDB.DeckAPIBase, client, log)
	images := imagepkg.NewFetcher(cfg.SWUDB.ImageBase, client, log)

	alphabet := deck.Alphabet(cfg.Deck.IDAlphabet)
	if alphabet == deck.AlphabetLetters {
		log.Warn("Deck IDs are restricted to letters; numeric swudb IDs will be rejected (set deck.idAlphabet=alphanumeric to allow them)")
	}

	p := pipeline.New(resolver, images, pipeline.Options{
		Validator:  deck.NewValidator(alphabet, cfg.Deck.MaxIDLength),
		ScratchDir: cfg.Storage.ScratchDir,
		ArchiveDir: cfg.Storage.ArchiveDir,
	}, log)

	return &App{
		Config:   cfg,
		Log:      log,
		Resolver: resolver,
		Images:   images,
		Pipeline: p,
	}
}
