package api

import (
	"fmt"

	"github.com/rhm-kanzlei/mailroom/internal/analyze"
	"github.com/rhm-kanzlei/mailroom/internal/config"
	"github.com/rhm-kanzlei/mailroom/internal/documents"
	"github.com/rhm-kanzlei/mailroom/internal/intake"
	"github.com/rhm-kanzlei/mailroom/internal/pages"
	"github.com/rhm-kanzlei/mailroom/internal/pipeline"
	"github.com/rhm-kanzlei/mailroom/internal/reference"
	"github.com/rhm-kanzlei/mailroom/internal/register"
	"github.com/rhm-kanzlei/mailroom/internal/rules"
	"github.com/rhm-kanzlei/mailroom/internal/segment"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Intake    intake.System
	Documents documents.System
	Rules     rules.System
	Register  register.System
}

// NewDomain creates all domain systems from the API runtime. The register
// table loads from the database on lifecycle startup so reference recognition
// sees the full case list before the first batch arrives.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	tables, err := cfg.Pipeline.LoadTables()
	if err != nil {
		return nil, fmt.Errorf("load pipeline tables: %w", err)
	}

	table := register.NewTable()
	recognizer, err := reference.New(tables.Reference, table)
	if err != nil {
		return nil, err
	}

	mode := cfg.Pipeline.ParsedMode()
	inspector, err := pages.NewInspector(
		mode,
		cfg.Pipeline.MarkerWord,
		cfg.Pipeline.Marker,
		tables.Thresholds,
		recognizer,
	)
	if err != nil {
		return nil, err
	}

	db := runtime.Database.Connection()

	registerSystem := register.New(
		db,
		table,
		recognizer.NormalizeCode,
		runtime.Logger,
		runtime.Pagination,
	)

	rulesSystem := rules.New(
		db,
		tables.Rules,
		tables.Categories,
		runtime.Logger,
		runtime.Pagination,
	)

	docsSystem := documents.New(
		db,
		runtime.Storage,
		rulesSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	pipelineRuntime := &pipeline.Runtime{
		Segmenter:  segment.New(inspector, mode, segment.NewPDFRenderer(), runtime.Logger),
		Recognizer: recognizer,
		Register:   table,
		Engine:     rulesSystem,
		Analyzer:   analyze.New(cfg.Analyzer, runtime.Logger),
		Logger:     runtime.Logger,
	}

	intakeSystem := intake.New(
		db,
		runtime.Storage,
		pipelineRuntime,
		docsSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	runtime.Lifecycle.OnStartup(func() {
		if err := registerSystem.Load(runtime.Lifecycle.Context()); err != nil {
			runtime.Logger.Error("register load failed", "error", err)
		}
	})

	return &Domain{
		Intake:    intakeSystem,
		Documents: docsSystem,
		Rules:     rulesSystem,
		Register:  registerSystem,
	}, nil
}
