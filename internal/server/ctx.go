package server

import (
	"net/http"
	"os"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/geoconv/internal/config"
	"github.com/woozymasta/geoconv/internal/convert"
)

// DefaultMaxBody caps request bodies of the conversion endpoint.
const DefaultMaxBody = 16 << 20

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Converter convert.Converter
	Defaults  config.Defaults
	Jobs      map[string]config.Job
	JobNames  []string
	MaxBody   int64
}

// NewServerContext initializes the context from the configuration. Batch
// jobs whose output file already exists are published under /jobs/.
func NewServerContext(cfg *config.Config) *ServerContext {
	log.Info().Int("config_jobs_count", len(cfg.Jobs)).Msg("Initializing server context")

	jobs := make(map[string]config.Job, len(cfg.Jobs))
	names := make([]string, 0, len(cfg.Jobs))

	for _, j := range cfg.Jobs {
		info, err := os.Stat(j.Output)
		if err != nil || info.IsDir() {
			log.Trace().
				Str("job", j.Name).
				Str("path", j.Output).
				Msg("Job output skipped: file not found")
			continue
		}

		log.Debug().
			Str("job", j.Name).
			Str("path", j.Output).
			Msg("Job output added to context")

		jobs[j.Name] = j
		names = append(names, j.Name)
	}

	sort.Strings(names)

	log.Info().
		Int("published_jobs_count", len(names)).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Converter: convert.Converter{MaxDepth: cfg.MaxDepth},
		Defaults:  cfg.Defaults,
		Jobs:      jobs,
		JobNames:  names,
		MaxBody:   DefaultMaxBody,
	}
}

// Handler returns the routed API wrapped in RequestLogger.
func (s *ServerContext) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/formats", s.HandleFormats)
	mux.HandleFunc("/api/convert", s.HandleConvert)
	mux.HandleFunc("/api/jobs", s.HandleJobsList)
	mux.HandleFunc("/jobs/", s.HandleJobOutput)

	return RequestLogger(mux)
}
