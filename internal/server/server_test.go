package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/geoconv/internal/config"
	"github.com/woozymasta/geoconv/internal/convert"
)

func newTestServer(t *testing.T) (*ServerContext, *httptest.Server) {
	t.Helper()

	dir := t.TempDir()
	out := filepath.Join(dir, "marker.wkt")
	require.NoError(t, os.WriteFile(out, []byte("POINT(30 10)\n"), 0o644))

	cfg := &config.Config{
		Defaults: config.Defaults{Minify: false},
		Jobs: []config.Job{
			{Name: "marker", Inline: "POINT(30 10)", To: "wkt", Output: out},
			{Name: "pending", Inline: "POINT(1 2)", To: "kml", Output: filepath.Join(dir, "pending.kml")},
		},
	}

	s := NewServerContext(cfg)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func post(t *testing.T, srv *httptest.Server, query, body string) *http.Response {
	t.Helper()
	resp, err := srv.Client().Post(srv.URL+"/api/convert?"+query, "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	var b strings.Builder
	_, err := b.ReadFrom(resp.Body)
	require.NoError(t, err)
	return b.String()
}

func TestHandleFormats(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/formats")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	var list []FormatInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, len(convert.Formats))
	assert.Equal(t, convert.FormatWKT, list[0].Name)
	assert.True(t, list[len(list)-1].Binary)
}

func TestHandleConvert(t *testing.T) {
	_, srv := newTestServer(t)

	resp := post(t, srv, "from=kml&to=wkt", `<Point><coordinates>30,10</coordinates></Point>`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "POINT(30 10)\n", readBody(t, resp))

	resp = post(t, srv, "to=geojson", `POINT(30 10)`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))
	assert.Equal(t, `{"type":"Point","coordinates":[30,10]}`, readBody(t, resp))

	resp = post(t, srv, "to=wkb&hex=true", `POINT(30 10)`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "01010000000000000000003e400000000000002440", readBody(t, resp))
}

func TestHandleConvert_Status(t *testing.T) {
	_, srv := newTestServer(t)

	cases := []struct {
		name   string
		query  string
		body   string
		status int
		kind   string
	}{
		{"missing to", "from=wkt", "POINT(1 2)", http.StatusBadRequest, ""},
		{"unknown to", "to=shp", "POINT(1 2)", http.StatusBadRequest, ""},
		{"unknown from", "from=dxf&to=wkt", "POINT(1 2)", http.StatusBadRequest, ""},
		{"bad bool", "to=wkb&hex=maybe", "POINT(1 2)", http.StatusBadRequest, ""},
		{"malformed", "from=geojson&to=wkt", "{", http.StatusUnprocessableEntity, "malformed input"},
		{"out of range", "to=wkt", "POINT(200 0)", http.StatusUnprocessableEntity, "out of range"},
		{"invalid feature", "to=wkt", "POLYGON EMPTY", http.StatusUnprocessableEntity, "invalid feature"},
		{"unimplemented", "to=gpx", "LINESTRING(1 2,3 4)", http.StatusNotImplemented, "unimplemented"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := post(t, srv, tc.query, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)

			var body errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tc.kind, body.Kind)
		})
	}
}

func TestHandleConvert_DeepEWKB(t *testing.T) {
	s, srv := newTestServer(t)
	s.Converter.MaxDepth = 8

	var b strings.Builder
	b.WriteString("0107000020e610000001000000")
	for range 50 {
		b.WriteString("010700000001000000")
	}
	b.WriteString("010700000000000000")

	resp := post(t, srv, "to=wkt", b.String())
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "malformed input", body.Kind)
	assert.Contains(t, body.Error, "ewkb")
}

func TestHandleConvert_Method(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/convert?to=wkt")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandleConvert_TooLarge(t *testing.T) {
	s, srv := newTestServer(t)
	s.MaxBody = 8

	resp := post(t, srv, "to=wkt", "POINT(30 10)")
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestJobs(t *testing.T) {
	s, srv := newTestServer(t)
	assert.Equal(t, []string{"marker"}, s.JobNames)

	resp, err := srv.Client().Get(srv.URL + "/api/jobs")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var list []JobInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Equal(t, []JobInfo{{Name: "marker", URL: "/jobs/marker", To: "wkt"}}, list)

	out, err := srv.Client().Get(srv.URL + "/jobs/marker")
	require.NoError(t, err)
	defer func() { _ = out.Body.Close() }()
	require.Equal(t, http.StatusOK, out.StatusCode)
	assert.Equal(t, "POINT(30 10)\n", readBody(t, out))

	etag := out.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/jobs/marker", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	cached, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = cached.Body.Close() }()
	assert.Equal(t, http.StatusNotModified, cached.StatusCode)

	missing, err := srv.Client().Get(srv.URL + "/jobs/pending")
	require.NoError(t, err)
	defer func() { _ = missing.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestRequestLogger_KeepsClientID(t *testing.T) {
	_, srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/formats", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "client-42")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "client-42", resp.Header.Get(RequestIDHeader))
}

func TestStatusFor(t *testing.T) {
	_, err := convert.ParseFormat("x")
	assert.Equal(t, http.StatusBadRequest, statusFor(err))
	assert.Equal(t, http.StatusInternalServerError, statusFor(os.ErrPermission))
}
