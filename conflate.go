package ranch

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ConflateOptions holds matching thresholds
type ConflateOptions struct {
	Logger *log.Logger
	// Maximum haversine distance between matched nodes
	NodeToleranceMeters float64
	// Minimum overlap score for links to match, in (0, 1]
	LinkOverlapThreshold float64
	// Maximum distance from sample point to the other line for the sample to be shared
	LinkBufferMeters float64
	// Distance between sample points along a link
	SampleSpacingMeters float64
	// Number of goroutines doing candidate search
	Workers int
}

// AmbiguousMatch is a record with more than one acceptable counterpart. The choice is deterministic.
type AmbiguousMatch struct {
	ReferenceID string    `json:"reference_id"`
	Chosen      string    `json:"chosen"`
	Candidates  []string  `json:"candidates"`
	Kind        MatchKind `json:"kind"`
}

// MatchStats are counters of conflation for a single kind of records.
// Matched counts input records consumed by merges (two per merge), so
// Matched + ReferenceOnly + OpenMapOnly + DuplicateDropped == Inputs.
type MatchStats struct {
	Inputs           int `json:"inputs"`
	Matched          int `json:"matched"`
	Merged           int `json:"merged"`
	ReferenceOnly    int `json:"reference_only"`
	OpenMapOnly      int `json:"openmap_only"`
	Ambiguous        int `json:"ambiguous"`
	DuplicateDropped int `json:"duplicate_dropped"`
}

// ConflationStats are counters of conflation
type ConflationStats struct {
	Nodes MatchStats `json:"nodes"`
	Links MatchStats `json:"links"`
}

// ConflationResult is a single node/link table pair built from two sources
type ConflationResult struct {
	Nodes       NodeTable
	Links       LinkTable
	Ambiguities []AmbiguousMatch
	Stats       ConflationStats
}

// Conflate merges reference source and open map source into one network.
// Reference records come first (in their order) followed by open map only records (in their order).
// Inputs are not modified.
func Conflate(ctx context.Context, ref, osmSource *NormalizedSource, opts ConflateOptions) (*ConflationResult, error) {
	if ref == nil || osmSource == nil {
		return nil, errors.New("Both sources must be provided")
	}
	if ref.Source != SOURCE_SHST {
		return nil, errors.Errorf("Reference source must be '%s', got '%s'", SOURCE_SHST, ref.Source)
	}
	if osmSource.Source != SOURCE_OSM {
		return nil, errors.Errorf("Open map source must be '%s', got '%s'", SOURCE_OSM, osmSource.Source)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	result := &ConflationResult{}

	nodes, err := conflateNodes(ctx, ref.Nodes, osmSource.Nodes, opts, result)
	if err != nil {
		return nil, errors.Wrap(err, "Can't conflate nodes")
	}
	err = conflateLinks(ctx, ref.Links, osmSource.Links, nodes, opts, result)
	if err != nil {
		return nil, errors.Wrap(err, "Can't conflate links")
	}
	return result, nil
}

// parallelFor calls fn for every index in [0, n) using at most workers goroutines.
// Indices are split into contiguous chunks.
func parallelFor(ctx context.Context, n int, workers int, fn func(i int)) error {
	if n == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers
	group, gctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		from, to := start, start+chunk
		if to > n {
			to = n
		}
		group.Go(func() error {
			for i := from; i < to; i++ {
				if i%1024 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				fn(i)
			}
			return nil
		})
	}
	return group.Wait()
}
