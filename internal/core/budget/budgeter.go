// Package budget selects and truncates session content so the assembled
// prompt never exceeds the configured size budget. Selection is
// deterministic: identical session snapshot, query, and budget yield an
// identical BudgetedContext.
package budget

import (
	"fmt"
	"math"

	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/core/ports"
	"github.com/inklyn/docchat/internal/core/prompt"
)

type Config struct {
	// DefaultBudget applies when the caller passes no explicit budget.
	DefaultBudget int
	// DocumentShare is the fraction of the post-reserve remainder allocated
	// to document context when the session holds at least one document with
	// content. History gets the rest, and all of it when no document does.
	DocumentShare float64
	// MessageOverhead is the fixed per-message cost charged on top of the
	// measured text, covering role labels and framing.
	MessageOverhead int
}

func (c Config) normalize() Config {
	out := c
	if out.DefaultBudget <= 0 {
		out.DefaultBudget = 8000
	}
	if out.DocumentShare <= 0 || out.DocumentShare >= 1 {
		out.DocumentShare = 0.65
	}
	if out.MessageOverhead < 0 {
		out.MessageOverhead = 0
	}
	return out
}

type Budgeter struct {
	sizer ports.Sizer
	cfg   Config
}

func New(sizer ports.Sizer, cfg Config) *Budgeter {
	return &Budgeter{sizer: sizer, cfg: cfg.normalize()}
}

// DefaultBudget exposes the configured fallback budget.
func (b *Budgeter) DefaultBudget() int { return b.cfg.DefaultBudget }

// SizeOf measures text in the budget unit in effect.
func (b *Budgeter) SizeOf(text string) int { return b.sizer.Size(text) }

// Build computes the budgeted context for one conversational turn.
//
// The fixed reserve (system instructions + user query) is non-negotiable;
// if it alone exceeds the budget the turn fails with
// ErrBudgetExceededByFixedCost. The remainder is split between document and
// history context by DocumentShare; leftover capacity is reallocated once
// in each direction, documents first.
func (b *Budgeter) Build(sess *domain.Session, systemInstructions, userQuery string, budget int) (*domain.BudgetedContext, error) {
	if budget <= 0 {
		budget = b.cfg.DefaultBudget
	}

	fixed := b.sizer.Size(systemInstructions) + b.sizer.Size(userQuery) + 2*b.cfg.MessageOverhead
	if fixed > budget {
		return nil, domain.WrapError(
			domain.ErrBudgetExceededByFixedCost,
			"build context",
			fmt.Errorf("fixed cost %d exceeds budget %d", fixed, budget),
		)
	}

	remainder := budget - fixed
	hasDocuments := sessionHasContent(sess)

	docAlloc := 0
	if hasDocuments {
		docAlloc = int(math.Floor(float64(remainder) * b.cfg.DocumentShare))
	}
	histAlloc := remainder - docAlloc

	excerpts, docCost := b.selectDocuments(sess, docAlloc)
	histAlloc += docAlloc - docCost

	turns, histCost := b.selectHistory(sess, histAlloc)

	// Single reallocation pass back to documents: rerun selection with the
	// capacity history left unused. No further rebalancing.
	if leftover := histAlloc - histCost; leftover > 0 && hasDocuments {
		excerpts, docCost = b.selectDocuments(sess, docCost+leftover)
	}

	return &domain.BudgetedContext{
		Excerpts:     excerpts,
		Turns:        turns,
		Budget:       budget,
		FixedCost:    fixed,
		DocumentCost: docCost,
		HistoryCost:  histCost,
	}, nil
}

func sessionHasContent(sess *domain.Session) bool {
	for i := range sess.Documents {
		if sess.Documents[i].HasContent() {
			return true
		}
	}
	return false
}

// selectDocuments walks records newest first and blocks in ordinal order
// within each record. A block that does not fit whole is truncated at a
// sentence or line boundary, never mid-word, and ends the selection. The
// assembler's context header is charged once as soon as any excerpt is
// selected, so the reported cost covers the full rendered section.
func (b *Budgeter) selectDocuments(sess *domain.Session, alloc int) ([]domain.DocumentExcerpt, int) {
	if alloc <= 0 {
		return nil, 0
	}

	var out []domain.DocumentExcerpt
	cost := b.sizer.Size(prompt.DocumentContextHeader)
	done := false

	for i := len(sess.Documents) - 1; i >= 0 && !done; i-- {
		rec := &sess.Documents[i]
		if !rec.HasContent() {
			continue
		}
		for _, block := range rec.Blocks {
			excerpt := domain.DocumentExcerpt{
				SourceID: rec.SourceID,
				Filename: rec.Filename,
				Ordinal:  block.Ordinal,
				Kind:     block.Kind,
				Text:     block.Text,
			}
			c := b.excerptCost(excerpt)
			if cost+c <= alloc {
				out = append(out, excerpt)
				cost += c
				continue
			}

			truncated, tc, ok := b.truncateToFit(excerpt, alloc-cost)
			if ok {
				out = append(out, truncated)
				cost += tc
			}
			done = true
			break
		}
	}
	if len(out) == 0 {
		return nil, 0
	}
	return out, cost
}

// excerptCost measures the excerpt exactly as the assembler renders it:
// label, text, and the two joining newlines.
func (b *Budgeter) excerptCost(e domain.DocumentExcerpt) int {
	return b.sizer.Size(excerptLabel(e) + "\n" + e.Text + "\n")
}

// excerptLabel mirrors the tag the assembler puts in front of each excerpt
// so the budget accounts for it.
func excerptLabel(e domain.DocumentExcerpt) string {
	return fmt.Sprintf("[%s #%d %s]", e.Filename, e.Ordinal, e.Kind)
}

// truncateToFit returns the longest prefix of the excerpt ending at a
// sentence or line boundary whose cost fits, falling back to a word
// boundary. ok is false when not even one word fits.
func (b *Budgeter) truncateToFit(e domain.DocumentExcerpt, room int) (domain.DocumentExcerpt, int, bool) {
	if room <= 0 {
		return domain.DocumentExcerpt{}, 0, false
	}
	for _, cut := range boundaryOffsets(e.Text) {
		candidate := e
		candidate.Text = e.Text[:cut]
		candidate.Truncated = true
		c := b.excerptCost(candidate)
		if c <= room {
			return candidate, c, true
		}
	}
	return domain.DocumentExcerpt{}, 0, false
}
