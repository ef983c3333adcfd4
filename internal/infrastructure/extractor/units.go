// Package extractor holds helpers shared by the format-specific extractor
// packages: the per-unit worker pool and the failed-unit marker block.
package extractor

import (
	"context"
	"sort"
	"sync"

	"github.com/inklyn/docchat/internal/core/domain"
)

// UnitMarkerText is the short marker recorded in place of a page or
// section whose extraction failed. The file as a whole keeps processing.
const UnitMarkerText = "[unreadable section]"

// MarkerBlock builds the raw-fallback block for a failed unit.
func MarkerBlock(ordinal int) domain.ExtractedBlock {
	return domain.ExtractedBlock{
		Ordinal: ordinal,
		Kind:    domain.KindRawFallback,
		Text:    UnitMarkerText,
	}
}

// UnitResult is one unit's outcome; Blocks may be empty when the unit had
// no content.
type UnitResult struct {
	Ordinal int
	Blocks  []domain.ExtractedBlock
}

// RunUnits dispatches n independent extraction units across a worker pool
// and merges the results back into unit order. Ordering is established by
// the merge, not by completion order, so workers may finish in any order.
// fn must return the blocks for unit i or an error; errored units become
// marker blocks.
func RunUnits(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) ([]domain.ExtractedBlock, error)) []domain.ExtractedBlock {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	results := make(chan UnitResult, n)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					results <- UnitResult{Ordinal: i, Blocks: []domain.ExtractedBlock{MarkerBlock(i)}}
					continue
				}
				blocks, err := fn(ctx, i)
				if err != nil {
					blocks = []domain.ExtractedBlock{MarkerBlock(i)}
				}
				results <- UnitResult{Ordinal: i, Blocks: blocks}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]UnitResult, 0, n)
	for r := range results {
		collected = append(collected, r)
	}
	sort.Slice(collected, func(a, b int) bool { return collected[a].Ordinal < collected[b].Ordinal })

	var out []domain.ExtractedBlock
	for _, r := range collected {
		out = append(out, r.Blocks...)
	}
	for i := range out {
		out[i].Ordinal = i
	}
	return out
}
