// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/woozymasta/geoconv/internal/convert"
	"github.com/woozymasta/geoconv/internal/geo"
	"github.com/woozymasta/geoconv/internal/logger"
)

const etagCap = 64

var errMethod = eris.New("method not allowed")

// FormatInfo describes one format in the /api/formats listing.
type FormatInfo struct {
	Name        convert.Format `json:"name"`
	ContentType string         `json:"content_type"`
	Binary      bool           `json:"binary"`
}

// JobInfo describes one published batch output.
type JobInfo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	To   string `json:"to"`
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// HandleFormats serves the list of supported formats.
func (s *ServerContext) HandleFormats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, errMethod)
		return
	}

	list := make([]FormatInfo, 0, len(convert.Formats))
	for _, f := range convert.Formats {
		list = append(list, FormatInfo{Name: f, ContentType: f.ContentType(false), Binary: f.Binary()})
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleJobsList serves the batch outputs available under /jobs/.
func (s *ServerContext) HandleJobsList(w http.ResponseWriter, r *http.Request) {
	list := make([]JobInfo, 0, len(s.JobNames))
	for _, name := range s.JobNames {
		list = append(list, JobInfo{Name: name, URL: "/jobs/" + name, To: s.Jobs[name].To})
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleJobOutput serves the output file of a published job.
func (s *ServerContext) HandleJobOutput(w http.ResponseWriter, r *http.Request) {
	// Path: /jobs/{name}
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/jobs/"), "/")
	j, ok := s.Jobs[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	contentType := ""
	if f, err := convert.ParseFormat(j.To); err == nil {
		contentType = f.ContentType(j.Options().Hex)
	}
	if !s.serveFile(w, r, j.Output, contentType) {
		http.NotFound(w, r)
	}
}

// HandleConvert converts the request body.
//
//	POST /api/convert?from=kml&to=wkt&hex=1&document=1&minify=1&gpx_mode=wpt
//
// A missing from sniffs the body; a missing to falls back to the configured
// default.
func (s *ServerContext) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, errMethod)
		return
	}

	from, to, opts, err := s.parseQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	maxBody := s.MaxBody
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	out, err := s.Converter.Convert(from, to, body, opts)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}

	logger.FromContext(r.Context()).Debug().
		Str("from", string(from)).
		Str("to", string(to)).
		Int("in_bytes", len(body)).
		Int("out_bytes", len(out)).
		Msg("Converted request body")

	w.Header().Set("Content-Type", to.ContentType(opts.Hex))
	_, _ = w.Write(out)
}

func (s *ServerContext) parseQuery(r *http.Request) (convert.Format, convert.Format, convert.Options, error) {
	q := r.URL.Query()
	var opts convert.Options

	var from convert.Format
	if name := firstNonEmpty(q.Get("from"), s.Defaults.From); name != "" {
		f, err := convert.ParseFormat(name)
		if err != nil {
			return "", "", opts, eris.Wrap(err, "from")
		}
		from = f
	}

	name := firstNonEmpty(q.Get("to"), s.Defaults.To)
	if name == "" {
		return "", "", opts, eris.New("to is required")
	}
	to, err := convert.ParseFormat(name)
	if err != nil {
		return "", "", opts, eris.Wrap(err, "to")
	}

	flags := []struct {
		dst  *bool
		name string
		def  bool
	}{
		{&opts.Hex, "hex", s.Defaults.Hex},
		{&opts.Document, "document", s.Defaults.Document},
		{&opts.Minify, "minify", s.Defaults.Minify},
	}
	for _, f := range flags {
		*f.dst = f.def
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return "", "", opts, eris.Wrapf(err, "%s", f.name)
		}
		*f.dst = b
	}

	opts.GPXMode = geo.GPXMode(firstNonEmpty(q.Get("gpx_mode"), string(s.Defaults.GPXMode)))
	return from, to, opts, nil
}

// statusFor maps conversion errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, convert.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, geo.ErrUnimplemented):
		return http.StatusNotImplemented
	case errors.Is(err, geo.ErrMalformed),
		errors.Is(err, geo.ErrOutOfRange),
		errors.Is(err, geo.ErrInvalidFeature):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	body := errorBody{Error: err.Error()}

	var ge *geo.Error
	if errors.As(err, &ge) {
		body.Kind = ge.Kind.String()
	}

	l := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		l.Error().Err(err).Int("status", status).Msg("Request failed")
	} else {
		l.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}

	writeJSON(w, status, body)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	http.ServeContent(w, r, filepath.Base(path), info.ModTime(), f)
	return true
}
