package segment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rhm-kanzlei/mailroom/internal/pages"
)

// Segmenter groups the content pages of one scanned batch into documents.
// A single instance serves one mode and is safe for concurrent use.
type Segmenter struct {
	inspector *pages.Inspector
	mode      pages.Mode
	renderer  Renderer
	logger    *slog.Logger
}

// New builds a Segmenter. renderer may be nil, in which case documents carry
// no artifact.
func New(
	inspector *pages.Inspector,
	mode pages.Mode,
	renderer Renderer,
	logger *slog.Logger,
) *Segmenter {
	return &Segmenter{
		inspector: inspector,
		mode:      mode,
		renderer:  renderer,
		logger:    logger.With("system", "segment"),
	}
}

// Segment walks the page sequence in order and cuts it into documents. Blank
// pages are dropped, separator pages close the open document without becoming
// part of any document, and in reference mode a change of recognized reference
// closes the open document before the new page is added. Pages that fail
// inspection are treated as blank and recorded in the trace. The only error
// returned is context cancellation; everything else degrades into trace
// entries so a single bad page never loses the batch.
func (s *Segmenter) Segment(ctx context.Context, source []byte, pp []pages.Page) (Result, error) {
	var (
		result  Result
		buffer  []pages.Page
		lastRef string
	)

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		result.Documents = append(result.Documents, assemble(buffer))
		buffer = nil
	}

	for _, page := range pp {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		verdict, err := s.inspector.Classify(page)
		if err != nil {
			s.logger.Warn("page inspection failed, treating as blank",
				"page", page.Index,
				"error", err,
			)
			result.Trace = append(result.Trace, Diagnostic{
				Page:    page.Index,
				Verdict: pages.TagBlank,
				Note:    fmt.Sprintf("inspection failed: %v", err),
			})
			continue
		}

		result.Trace = append(result.Trace, Diagnostic{
			Page:    page.Index,
			Verdict: verdict.Tag,
		})

		switch verdict.Tag {
		case pages.TagBlank:
			continue
		case pages.TagSeparator:
			flush()
		case pages.TagContent:
			if s.mode == pages.ModeReference {
				if verdict.Reference != "" {
					if lastRef != "" && verdict.Reference != lastRef {
						flush()
					}
					lastRef = verdict.Reference
				}
			}
			buffer = append(buffer, page)
		}
	}
	flush()

	if source != nil {
		for i := range result.Documents {
			s.render(source, &result.Documents[i], &result.Trace)
		}
	}

	return result, nil
}

// assemble turns a buffered page run into a Document. Page text is joined
// with a paragraph break so downstream recognition sees page boundaries.
func assemble(buffer []pages.Page) Document {
	indices := make([]int, len(buffer))
	texts := make([]string, len(buffer))
	for i, p := range buffer {
		indices[i] = p.Index
		texts[i] = p.Text
	}

	return Document{
		PageIndices: indices,
		Text:        strings.Join(texts, "\n\n"),
	}
}

func (s *Segmenter) render(source []byte, doc *Document, trace *[]Diagnostic) {
	if s.renderer == nil {
		return
	}

	artifact, err := s.renderer.Render(source, doc.PageIndices)
	if err != nil {
		first, last := doc.PageIndexSpan()
		s.logger.Warn("document render failed",
			"first_page", first,
			"last_page", last,
			"error", err,
		)
		*trace = append(*trace, Diagnostic{
			Page: -1,
			Note: fmt.Sprintf("render of pages %d-%d failed: %v", first, last, err),
		})
		return
	}
	doc.Artifact = artifact
}
