// Package pipeline orchestrates one intake run: segmentation, reference
// recognition, metadata analysis, classification, and filename generation.
// The Runtime carries explicit service dependencies; Execute holds no state
// of its own and is safe to run concurrently for independent batches.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rhm-kanzlei/mailroom/internal/analyze"
	"github.com/rhm-kanzlei/mailroom/internal/pages"
	"github.com/rhm-kanzlei/mailroom/internal/reference"
	"github.com/rhm-kanzlei/mailroom/internal/register"
	"github.com/rhm-kanzlei/mailroom/internal/rules"
	"github.com/rhm-kanzlei/mailroom/internal/segment"
)

// Runtime carries the services one pipeline execution depends on.
type Runtime struct {
	Segmenter  *segment.Segmenter
	Recognizer *reference.Recognizer
	Register   *register.Table
	Engine     rules.System
	Analyzer   analyze.Analyzer
	Logger     *slog.Logger
}

// Input is one batch to process: the owner on whose behalf classification
// runs, the source PDF, and its ordered OCR pages.
type Input struct {
	Owner  string
	Source []byte
	Pages  []pages.Page
}

// DocumentResult is the full pipeline outcome for one segmented document.
type DocumentResult struct {
	Segment        segment.Document      `json:"segment"`
	Reference      reference.Result      `json:"reference"`
	Handler        string                `json:"handler,omitempty"`
	Analysis       *analyze.Analysis     `json:"analysis,omitempty"`
	Classification *rules.Classification `json:"classification,omitempty"`
	Filename       string                `json:"filename"`
}

// Result aggregates per-document results and the diagnostic trace.
type Result struct {
	Documents []DocumentResult     `json:"documents"`
	Trace     []segment.Diagnostic `json:"trace"`
}

// Execute runs the full pipeline over one batch. Per-document analysis and
// classification failures degrade into trace entries; only segmentation
// failure (context cancellation) aborts the run.
func Execute(ctx context.Context, rt *Runtime, in Input) (*Result, error) {
	seg, err := rt.Segmenter.Segment(ctx, in.Source, in.Pages)
	if err != nil {
		return nil, fmt.Errorf("segment batch: %w", err)
	}

	result := &Result{
		Documents: make([]DocumentResult, 0, len(seg.Documents)),
		Trace:     seg.Trace,
	}

	for _, doc := range seg.Documents {
		result.Documents = append(result.Documents, rt.processDocument(ctx, in.Owner, doc, &result.Trace))
	}

	rt.Logger.Info("pipeline executed",
		"owner", in.Owner,
		"pages", len(in.Pages),
		"documents", len(result.Documents),
	)
	return result, nil
}

func (rt *Runtime) processDocument(
	ctx context.Context,
	owner string,
	doc segment.Document,
	trace *[]segment.Diagnostic,
) DocumentResult {
	out := DocumentResult{Segment: doc}

	out.Reference = rt.Recognizer.Recognize(doc.Text)
	out.Handler = out.Reference.Code
	if out.Handler == "" {
		if code, ok := rt.Recognizer.DetectHandler(doc.Text); ok {
			out.Handler = code
		}
	}

	analysis, err := rt.Analyzer.Analyze(ctx, doc.Text, analyze.References{
		Internal: out.Reference.Internal,
		External: out.Reference.External,
	})
	if err != nil {
		first, _ := doc.PageIndexSpan()
		rt.Logger.Warn("document analysis failed", "first_page", first, "error", err)
		*trace = append(*trace, segment.Diagnostic{
			Page: -1,
			Note: fmt.Sprintf("analysis failed: %v", err),
		})
	} else {
		out.Analysis = analysis
	}

	client, opponent, date, keywords := rt.documentFacts(&out)

	classification, err := rt.Engine.Classify(ctx, owner, rules.DocumentProfile{
		Text:    doc.Text,
		Sender:  opponent,
		Subject: SubjectLine(doc.Text),
	})
	if err != nil {
		first, _ := doc.PageIndexSpan()
		rt.Logger.Warn("document classification failed", "first_page", first, "error", err)
		*trace = append(*trace, segment.Diagnostic{
			Page: -1,
			Note: fmt.Sprintf("classification failed: %v", err),
		})
	} else {
		out.Classification = classification
	}

	out.Filename = Filename(out.Reference.Internal, client, opponent, date, keywords)
	return out
}

// documentFacts merges analysis output with register metadata: the register
// entry for a recognized stem fills in parties the analysis missed.
func (rt *Runtime) documentFacts(out *DocumentResult) (client, opponent, date string, keywords []string) {
	if out.Analysis != nil {
		client = out.Analysis.Client
		opponent = out.Analysis.Opponent
		date = out.Analysis.Date
		keywords = out.Analysis.Keywords
	}

	if out.Reference.Stem != "" && rt.Register != nil {
		if entry, ok := rt.Register.Lookup(out.Reference.Stem); ok {
			if client == "" {
				client = entry.Client
			}
			if opponent == "" {
				opponent = entry.Opponent
			}
		}
	}

	return client, opponent, date, keywords
}

// SubjectLine returns the first non-empty line, the closest thing scanned
// mail has to a subject.
func SubjectLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
