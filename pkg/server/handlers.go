package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/classgraph/pkg/buildinfo"
	"github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/graph"
	"github.com/matzehuels/classgraph/pkg/render"
	"github.com/matzehuels/classgraph/pkg/source"
	"github.com/matzehuels/classgraph/pkg/store"
	"github.com/matzehuels/classgraph/pkg/validate"
)

// maxBuildBody caps the size of a posted record array.
const maxBuildBody = 32 << 20

type errorBody struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

var errNoGraph = errors.New(errors.ErrCodeNotFound, "no graph has been built yet")

func (s *Server) current(w http.ResponseWriter) (*graph.Graph, bool) {
	res := s.Result()
	if res == nil || res.Graph == nil {
		s.writeError(w, errNoGraph)
		return nil, false
	}
	return res.Graph, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.current(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := graph.WriteGraph(g, w); err != nil {
		s.logger.Error("write graph", "err", err)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.current(w); !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Result().Stats)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.current(w); !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Result().Report)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	g, ok := s.current(w)
	if !ok {
		return
	}
	opts, err := renderOptions(r, s.Result().Report)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(render.FormatDOT))
	_, _ = io.WriteString(w, render.ToDOT(g, opts))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	res := s.Result()
	if res == nil || res.Graph == nil {
		s.writeError(w, errNoGraph)
		return
	}
	s.serveSVG(w, r, "graph:"+res.GraphHash, res.Graph, res.Report)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "building is disabled on this server"))
		return
	}
	records, err := source.ReadRecords(http.MaxBytesReader(w, r.Body, maxBuildBody))
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts := s.opts
	opts.Inputs = nil
	opts.Records = records
	opts.Formats = nil
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil && res == nil {
		s.writeError(w, err)
		return
	}
	s.SetResult(res)

	status := http.StatusOK
	if err != nil {
		// Strict mode rejected the report; the build is still served.
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, struct {
		Stats  any `json:"stats"`
		Report any `json:"report"`
	}{res.Stats, res.Report})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !s.hasStore(w) {
		return
	}
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.hasStore(w) {
		return
	}
	res := s.Result()
	if res == nil || res.Graph == nil {
		s.writeError(w, errNoGraph)
		return
	}
	snap := store.NewSnapshot(r.URL.Query().Get("name"), res.Graph, res.Stats, res.Report)
	if err := s.store.Save(r.Context(), snap); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap.Summary())
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.hasStore(w) {
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSnapshotSVG(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	s.serveSVG(w, r, "snapshot:"+snap.ID, snap.BuildGraph(), snap.Report)
}

func (s *Server) hasStore(w http.ResponseWriter) bool {
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "no snapshot store configured"))
		return false
	}
	return true
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*store.Snapshot, bool) {
	if !s.hasStore(w) {
		return nil, false
	}
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return snap, true
}

// serveSVG renders g, consulting the LRU cache first. key identifies the
// graph; the query string is appended to it. Concurrent requests for the
// same key share one render.
func (s *Server) serveSVG(w http.ResponseWriter, r *http.Request, key string, g *graph.Graph, report *validate.Report) {
	opts, err := renderOptions(r, report)
	if err != nil {
		s.writeError(w, err)
		return
	}
	key = fmt.Sprintf("%s|%s", key, r.URL.Query().Encode())

	v, err, shared := s.renders.Do(key, func() (any, error) {
		if svg, ok := s.svgs.Get(key); ok {
			return svg, nil
		}
		// Detached so one client hanging up does not fail the others.
		svg, err := s.renderSVG(context.WithoutCancel(r.Context()), g, opts)
		if err != nil {
			return nil, err
		}
		s.svgs.Add(key, svg)
		return svg, nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if shared {
		s.logger.Debug("shared svg render", "key", key)
	}
	w.Header().Set("Content-Type", render.ContentType(render.FormatSVG))
	_, _ = w.Write(v.([]byte))
}

func (s *Server) renderSVG(ctx context.Context, g *graph.Graph, opts render.Options) ([]byte, error) {
	svg, err := render.Render(ctx, g, render.FormatSVG, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
	}
	return svg, nil
}

// renderOptions reads DOT options from the query string.
func renderOptions(r *http.Request, report *validate.Report) (render.Options, error) {
	q := r.URL.Query()
	opts := render.Options{
		Detailed: flag(q.Get("detailed")),
		Clusters: flag(q.Get("clusters")),
		RankDir:  strings.ToUpper(q.Get("rankdir")),
	}
	switch opts.RankDir {
	case "", "TB", "BT", "LR", "RL":
	default:
		return opts, errors.New(errors.ErrCodeInvalidInput, "rankdir must be TB, BT, LR or RL")
	}
	switch q.Get("highlight") {
	case "":
	case "cycles":
		if report != nil {
			opts.Highlight = report.CircularDependencies
		}
	case "paths":
		if report != nil {
			opts.Highlight = report.LongestPaths
		}
	default:
		return opts, errors.New(errors.ErrCodeInvalidInput, "highlight must be cycles or paths")
	}
	return opts, nil
}

func flag(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
