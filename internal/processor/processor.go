// Package processor runs batch conversion jobs concurrently.
package processor

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconv/internal/config"
	"github.com/woozymasta/geoconv/internal/convert"
)

// DefaultConcurrency is used when Processor.Concurrency is not positive.
const DefaultConcurrency = 4

// Processor converts jobs with a bounded number of workers. Geometries are
// immutable, so workers share nothing but the HTTP client.
type Processor struct {
	Client      *http.Client
	Converter   convert.Converter
	Concurrency int
	Force       bool // overwrite existing outputs
}

// Result reports the outcome of one job.
type Result struct {
	Err      error
	Job      string
	Output   string
	Roots    int
	Bytes    int
	Duration time.Duration
	Skipped  bool
}

// Run processes every job and returns the results in job order.
func (p *Processor) Run(ctx context.Context, jobs []config.Job) []Result {
	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	type indexed struct {
		job   config.Job
		index int
	}

	queue := make(chan indexed, len(jobs))
	for i, j := range jobs {
		queue <- indexed{job: j, index: i}
	}
	close(queue)

	results := make([]Result, len(jobs))

	var wg sync.WaitGroup
	for range min(concurrency, len(jobs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range queue {
				// each worker owns distinct indexes, no lock needed
				results[item.index] = p.Process(ctx, item.job)
			}
		}()
	}
	wg.Wait()

	return results
}

// Process converts a single job.
func (p *Processor) Process(ctx context.Context, j config.Job) Result {
	start := time.Now()
	res := Result{Job: j.Name, Output: j.Output}

	if !p.Force {
		if info, err := os.Stat(j.Output); err == nil && info.Size() > 0 {
			log.Debug().Str("job", j.Name).Str("output", j.Output).Msg("Output exists, skipping")
			res.Skipped = true
			return res
		}
	}

	if err := ctx.Err(); err != nil {
		res.Err = eris.Wrap(err, "cancelled")
		return res
	}

	res.Roots, res.Bytes, res.Err = p.convert(ctx, j)
	res.Duration = time.Since(start)

	if res.Err != nil {
		log.Error().Err(res.Err).Str("job", j.Name).Msg("Job failed")
		return res
	}

	log.Info().
		Str("job", j.Name).
		Str("output", j.Output).
		Int("roots", res.Roots).
		Int("bytes", res.Bytes).
		Dur("took", res.Duration).
		Msg("Job converted")

	return res
}

func (p *Processor) convert(ctx context.Context, j config.Job) (int, int, error) {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	var from convert.Format
	if j.From != "" {
		f, err := convert.ParseFormat(j.From)
		if err != nil {
			return 0, 0, err
		}
		from = f
	}
	to, err := convert.ParseFormat(j.To)
	if err != nil {
		return 0, 0, err
	}

	data, err := loadSource(ctx, client, j)
	if err != nil {
		return 0, 0, err
	}

	geoms, err := p.Converter.Decode(from, data)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "decode %s", j.Name)
	}

	out, err := p.Converter.Encode(geoms, to, j.Options())
	if err != nil {
		return len(geoms), 0, eris.Wrapf(err, "encode %s", j.Name)
	}

	if err := saveOutput(j.Output, out); err != nil {
		return len(geoms), 0, err
	}
	return len(geoms), len(out), nil
}

// Failed counts results with an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
