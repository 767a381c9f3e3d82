package planning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360studio/plantask/history"
	"github.com/c360studio/plantask/plan"
	"github.com/c360studio/plantask/taskgraph"
	"github.com/c360studio/plantask/textgen"
)

// Planner runs the full planning flow: generate plan text from a
// request, extract a structured plan, archive it, and materialize its
// tasks.
type Planner struct {
	generator textgen.Generator
	extractor *plan.Extractor
	builder   *taskgraph.Builder
	ledger    *history.Ledger
	logger    *slog.Logger
}

// NewPlanner creates a Planner. generator may be nil, in which case
// only PlanFromText works and PlanFromRequest fails fast.
func NewPlanner(generator textgen.Generator, extractor *plan.Extractor, builder *taskgraph.Builder, ledger *history.Ledger, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		generator: generator,
		extractor: extractor,
		builder:   builder,
		ledger:    ledger,
		logger:    logger,
	}
}

// PlanFromRequest asks the generator for plan text and runs it through
// PlanFromText. image may be nil; when present it is sent alongside
// the prompt and an image-analysis event is recorded.
func (p *Planner) PlanFromRequest(ctx context.Context, request string, image []byte) (*plan.Document, []taskgraph.Task, error) {
	if p.generator == nil {
		return nil, nil, fmt.Errorf("no text generator configured")
	}

	prompt := textgen.PlanPrompt(request)
	raw, err := p.generator.Generate(ctx, prompt, textgen.DefaultOptions(), image)
	if err != nil {
		return nil, nil, fmt.Errorf("generate plan: %w", err)
	}

	if len(image) > 0 {
		p.ledger.Record(ctx, history.TypeImageAnalysis,
			"Imagem analisada para geração de plano",
			map[string]any{"image_bytes": len(image)})
	}

	return p.PlanFromText(ctx, raw)
}

// PlanFromText extracts a plan from raw model output or user text,
// archives it, and materializes its tasks. Extraction never fails on
// non-empty input, so the only extraction error here is empty input.
func (p *Planner) PlanFromText(ctx context.Context, raw string) (*plan.Document, []taskgraph.Task, error) {
	doc, err := p.extractor.Extract(raw)
	if err != nil {
		return nil, nil, err
	}

	p.ledger.Record(ctx, history.TypePlanGeneration,
		"Plano gerado: "+doc.Title,
		map[string]any{"tasks": len(doc.Tasks)})
	p.ledger.SavePlan(ctx, doc)

	tasks, err := p.builder.Materialize(ctx, doc)
	if err != nil {
		// A partial failure still produced tasks; surface both.
		return doc, tasks, err
	}
	return doc, tasks, nil
}
