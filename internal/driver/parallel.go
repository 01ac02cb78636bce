package driver

import (
	"context"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"mend/internal/trace"
)

// RepairFiles repairs every path with a bounded worker pool. Reports are
// returned in input order; a nil entry means the file was never scheduled
// because ctx was cancelled, in which case the context error is returned.
func RepairFiles(ctx context.Context, paths []string, opts Options) ([]*Report, error) {
	opts.normalize()
	if len(paths) == 0 {
		return nil, nil
	}

	span, ctx := trace.Start(ctx, trace.ScopeDriver, "repair")
	span.WithExtra("files", strconv.Itoa(len(paths)))

	for _, path := range paths {
		emit(opts.Progress, Event{File: path, Status: StatusQueued})
	}

	// Настраиваем параллелизм
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]*Report, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func(i int, path string) func() error {
			return func() error {
				// Проверка отмены
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				results[i] = RepairFile(gctx, path, opts)
				return nil
			}
		}(i, path))
	}

	err := g.Wait()
	span.End(Summarize(results).String())
	return results, err
}
