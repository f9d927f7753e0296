// Package app wires application services with infrastructure adapters.
package app

import (
	"context"

	"github.com/nekrovoice/nekro-go/internal/domain"
	"github.com/nekrovoice/nekro-go/internal/infrastructure/config"
	"github.com/nekrovoice/nekro-go/internal/infrastructure/executor"
	"github.com/nekrovoice/nekro-go/internal/infrastructure/training"
	"github.com/nekrovoice/nekro-go/internal/intent"
	"github.com/nekrovoice/nekro-go/internal/interpret"
	"github.com/nekrovoice/nekro-go/internal/learning"
	"github.com/nekrovoice/nekro-go/internal/pkg/logger"
	"github.com/nekrovoice/nekro-go/internal/ports"
	"github.com/nekrovoice/nekro-go/internal/services"
	"github.com/nekrovoice/nekro-go/internal/wakeword"
)

// Container holds the composed dependency graph.
type Container struct {
	Config       domain.Config
	ConfigLoader *config.FileLoader
	Store        *training.SQLiteStore
	Learning     *learning.Engine
	Processor    *services.Processor
	Wake         *wakeword.Detector
	Interpreter  ports.Interpreter
	Logger       ports.Logger
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	log := logger.NewStd(verbose)

	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	store, err := training.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	engine := learning.NewEngine(store, log,
		learning.WithThreshold(cfg.Learning.SimilarityThreshold),
		learning.WithRecencyWindow(cfg.Learning.RecencyWindow),
	)

	bridge := interpret.NewBridge(cfg.Interpreter, engine, log)

	processor := &services.Processor{
		Learning:    engine,
		Classifier:  intent.NewClassifier(engine),
		Interpreter: bridge,
		Executor:    executor.NewAnnouncer(),
		Logger:      log,
	}

	return &Container{
		Config:       cfg,
		ConfigLoader: cfgLoader,
		Store:        store,
		Learning:     engine,
		Processor:    processor,
		Wake:         wakeword.New(cfg.Wake.Phrase, cfg.Wake.Threshold),
		Interpreter:  bridge,
		Logger:       log,
	}, nil
}

// Close drains pending learning writes and releases storage.
func (c *Container) Close() error {
	c.Learning.Close()
	return c.Store.Close()
}
