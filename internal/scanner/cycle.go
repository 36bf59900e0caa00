package scanner

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/steveyegge/logudge/internal/types"
)

// ScanAll scans every directory with the same threshold and merges the
// results in the order given.
//
// Scans run concurrently, at most workers at a time. The merge is a
// sequential fold over dirs afterwards, so ties always go to the earlier
// directory regardless of which scan finished first. A directory that fails
// is recorded in DirErrors; only context cancellation aborts the cycle.
func (s *Scanner) ScanAll(ctx context.Context, dirs []string, threshold time.Time, workers int) (*types.CycleResult, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]*types.ScanResult, len(dirs))
	errs := make([]error, len(dirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			res, err := s.Scan(gctx, dir, threshold)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				errs[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cycle := types.NewCycleResult()
	for i, dir := range dirs {
		if errs[i] != nil {
			cycle.DirErrors = append(cycle.DirErrors, types.DirError{Directory: dir, Err: errs[i]})
			continue
		}
		cycle.Merge(results[i])
	}
	return cycle, nil
}
