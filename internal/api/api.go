// Package api exposes the aggregator over HTTP for the table editor.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MalithGihan/sankey-service/internal/aggregate"
	"github.com/MalithGihan/sankey-service/internal/apperr"
	"github.com/MalithGihan/sankey-service/internal/figure"
	"github.com/MalithGihan/sankey-service/internal/ingest"
	"github.com/MalithGihan/sankey-service/internal/palette"
	"github.com/MalithGihan/sankey-service/internal/render"
	"github.com/MalithGihan/sankey-service/internal/settings"
	"github.com/MalithGihan/sankey-service/internal/store"
	"github.com/MalithGihan/sankey-service/internal/validate"
	"github.com/MalithGihan/sankey-service/pkg/types"
)

const maxBody = 8 << 20

type Server struct {
	Store    *store.FS
	Palette  palette.Palette
	Settings settings.Table // used when a request carries no settings table
}

type renderRequest struct {
	Rows     []map[string]any  `json:"rows"`
	Settings map[string]any    `json:"settings"`
	Palette  map[string]string `json:"palette"`
	Options  render.Options    `json:"options"`
}

type errorResp struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"service":"sankey-service"}`))
	})
	r.Get("/palette", s.handlePalette)
	r.Get("/settings/defaults", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, s.Settings)
	})
	r.Get("/table/default", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, ingest.DefaultTable())
	})
	r.Post("/render", s.handleRender)

	r.Post("/jobs", s.handleUpload)
	r.Put("/jobs/{id}/rows", s.handlePutRows)
	r.Get("/jobs/{id}/figure", s.handleJobFigure)
	r.Get("/jobs/{id}/figure/last", s.handleLastFigure)
	return r
}

func (s *Server) handlePalette(w http.ResponseWriter, _ *http.Request) {
	alpha, err := s.Settings.Float(settings.KeyTransparency)
	if err != nil {
		alpha = 1
	}
	writeJSON(w, http.StatusOK, s.Palette.Swatches(alpha))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	rows, tbl, err := s.snapshotFrom(req)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	pal := s.Palette
	if len(req.Palette) > 0 {
		if pal, err = palette.New(req.Palette); err != nil {
			badRequest(w, r, err)
			return
		}
	}
	out, err := render.Run(rows, tbl, pal, req.Options)
	if err != nil {
		renderFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "figure": out.Figure, "result": out.Result})
}

// Upload table files as a new editing job.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		badRequest(w, r, err)
		return
	}
	var parsed []ingest.ParsedFile
	for _, fh := range r.MultipartForm.File["files"] {
		src, err := fh.Open()
		if err != nil {
			internalError(w, r, err)
			return
		}
		p, err := ingest.Parse(fh.Filename, src)
		src.Close()
		if err != nil {
			badRequest(w, r, err)
			return
		}
		parsed = append(parsed, p)
	}

	id, err := s.Store.NewJob()
	if err != nil {
		internalError(w, r, err)
		return
	}
	rows := ingest.BuildTable(parsed)
	if err := s.Store.SaveSnapshot(id, store.Snapshot{Rows: rows}); err != nil {
		internalError(w, r, err)
		return
	}
	log.Printf("job %s: %d file(s), %d row(s)", id, len(parsed), len(rows))
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "jobId": id, "rows": len(rows)})
}

// Replace a job's snapshot with the editor's current rows.
func (s *Server) handlePutRows(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, err := decodeRequest(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	rows, err := ingest.RowsFromMaps(req.Rows)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	snap := store.Snapshot{Rows: rows}
	if req.Settings != nil {
		if snap.Settings, err = render.TableFrom(req.Settings); err != nil {
			badRequest(w, r, err)
			return
		}
	}
	if err := s.Store.SaveSnapshot(id, snap); err != nil {
		storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "jobId": id, "rows": len(rows)})
}

// Recompute the figure from the job's latest snapshot.
func (s *Server) handleJobFigure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.Store.LoadSnapshot(id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	tbl := snap.Settings
	if tbl == nil {
		tbl = s.Settings
	}
	q := r.URL.Query()
	format := q.Get("format")
	if format != "" && format != figure.FormatJSON && format != figure.FormatCSV {
		badRequest(w, r, errors.New("format must be json or csv"))
		return
	}
	opts := render.Options{Fallback: q.Get("fallback"), Title: q.Get("title")}
	switch aggregate.Fallback(opts.Fallback) {
	case "", aggregate.FallbackDefault, aggregate.FallbackRandom:
	default:
		badRequest(w, r, errors.New("fallback must be default or random"))
		return
	}

	out, err := render.Run(snap.Rows, tbl, s.Palette, opts)
	if err != nil {
		renderFailed(w, r, err)
		return
	}

	var doc bytes.Buffer
	if err := figure.Export(&doc, figure.FormatJSON, out.Figure, out.Result); err != nil {
		internalError(w, r, err)
		return
	}
	if err := s.Store.SaveFigure(id, doc.Bytes()); err != nil {
		internalError(w, r, err)
		return
	}

	body := doc.Bytes()
	if format == figure.FormatCSV {
		var listing bytes.Buffer
		if err := figure.Export(&listing, format, out.Figure, out.Result); err != nil {
			internalError(w, r, err)
			return
		}
		body = listing.Bytes()
	}
	w.Header().Set("Content-Type", figure.ContentType(format))
	writeBody(w, r, body)
}

func (s *Server) handleLastFigure(w http.ResponseWriter, r *http.Request) {
	b, err := s.Store.LoadFigure(chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeBody(w, r, b)
}

func (s *Server) snapshotFrom(req renderRequest) ([]types.Row, settings.Table, error) {
	rows, err := ingest.RowsFromMaps(req.Rows)
	if err != nil {
		return nil, nil, err
	}
	if req.Settings == nil {
		return rows, s.Settings, nil
	}
	tbl, err := render.TableFrom(req.Settings)
	if err != nil {
		return nil, nil, err
	}
	return rows, tbl, nil
}

func decodeRequest(r *http.Request) (renderRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return renderRequest{}, err
	}
	if err := validate.ValidateJSON(body); err != nil {
		return renderRequest{}, err
	}
	var req renderRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return renderRequest{}, err
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeBody sends a fully rendered body; the status line is already gone
// by the time a write fails, so the failure can only be logged.
func writeBody(w http.ResponseWriter, r *http.Request, b []byte) {
	if _, err := w.Write(b); err != nil {
		log.Printf("%s %s: write response: %v", r.Method, r.URL.Path, err)
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("%s %s: invalid request: %v", r.Method, r.URL.Path, err)
	writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error(), Kind: "invalid_request"})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	writeJSON(w, http.StatusInternalServerError, errorResp{Error: "internal error", Kind: apperr.KindInternal})
}

// renderFailed surfaces an aggregation failure as a user-facing warning.
func renderFailed(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.Kind(err)
	if kind == apperr.KindInternal {
		internalError(w, r, err)
		return
	}
	log.Printf("%s %s: render refused (%s): %v", r.Method, r.URL.Path, kind, err)
	writeJSON(w, apperr.Status(err), errorResp{Error: err.Error(), Kind: kind})
}

func storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrJobNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp{Error: "job not found", Kind: "not_found"})
		return
	}
	internalError(w, r, err)
}
