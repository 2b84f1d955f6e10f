package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/lvillar/rollcall"
	"github.com/lvillar/rollcall/job"
	"github.com/lvillar/rollcall/source"
)

// maxJobSize bounds the body of POST /api/sheet.
const maxJobSize = 1 << 20

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/facets", s.handleFacets)
	mux.HandleFunc("GET /api/records", s.handleRecords)
	mux.HandleFunc("POST /api/sheet", s.handleSheet)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.cfg.Version})
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobFromQuery(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	facets, err := j.Facets(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobFromQuery(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	tbl, err := j.Table(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	if j.Hub != "" && j.Date != "" {
		if tbl, err = j.Select(tbl); err != nil {
			writeFailure(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"columns": tbl.Columns,
		"rows":    tbl.Rows,
		"total":   tbl.Len(),
	})
}

func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxJobSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(data) > maxJobSize {
		writeError(w, http.StatusRequestEntityTooLarge, "job too large")
		return
	}
	parsed, err := job.Parse(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	j := job.Overlay(s.cfg.Defaults, *parsed)
	if err := s.checkSource(j.Source.Path); err != nil {
		writeFailure(w, err)
		return
	}
	// Local letterhead and logo files are only read from the configured defaults.
	j.LetterheadPath, j.LogoPath = s.cfg.Defaults.LetterheadPath, s.cfg.Defaults.LogoPath

	var buf bytes.Buffer
	name := job.FileName(&j)
	if r.URL.Query().Get("batch") != "" {
		res, err := job.Batch(r.Context(), &buf, &j)
		if err != nil {
			writeFailure(w, err)
			return
		}
		name = "listas_presenca.pdf"
		w.Header().Set("X-Sheet-Pages", fmt.Sprint(res.Pages))
		w.Header().Set("X-Sheet-Sessions", fmt.Sprint(len(res.Sessions)))
	} else {
		res, err := job.Run(r.Context(), &buf, &j)
		if err != nil {
			writeFailure(w, err)
			return
		}
		w.Header().Set("X-Sheet-Pages", fmt.Sprint(res.Pages))
		w.Header().Set("X-Document-ID", res.DocumentID)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) jobFromQuery(r *http.Request) (*job.Job, error) {
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		return nil, fmt.Errorf("%w: missing 'path' parameter", rollcall.ErrInvalidParam)
	}
	if err := s.checkSource(path); err != nil {
		return nil, err
	}
	j := job.Overlay(s.cfg.Defaults, job.Job{
		Source: source.Spec{
			Kind:      q.Get("kind"),
			Path:      path,
			Sheet:     q.Get("sheet"),
			Delimiter: q.Get("delimiter"),
		},
		Hub:  q.Get("hub"),
		Date: q.Get("date"),
	})
	return &j, nil
}

// errForbiddenPath reports a local source outside SourceRoot.
var errForbiddenPath = errors.New("source path outside the allowed directory")

// checkSource rejects a local path that leaves SourceRoot, following
// symbolic links on both sides.
func (s *Server) checkSource(path string) error {
	if s.cfg.SourceRoot == "" || path == "" || strings.Contains(path, "://") {
		return nil
	}
	root, err := resolvePath(s.cfg.SourceRoot)
	if err != nil {
		return err
	}
	target, err := resolvePath(path)
	if err != nil {
		return errForbiddenPath
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errForbiddenPath
	}
	return nil
}

// resolvePath returns the absolute form of path with symbolic links
// evaluated. Missing trailing elements are resolved through their nearest
// existing parent and kept as they are.
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	var missing []string
	for {
		resolved, err := filepath.EvalSymlinks(abs)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", err
		}
		missing = append([]string{filepath.Base(abs)}, missing...)
		abs = parent
	}
}

// statusOf maps an error to an HTTP status code.
func statusOf(err error) int {
	var (
		missing   *rollcall.MissingColumnsError
		column    *rollcall.ColumnError
		malformed *rollcall.MalformedTableError
		srcErr    *rollcall.SourceError
	)
	switch {
	case errors.Is(err, errForbiddenPath):
		return http.StatusForbidden
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, rollcall.ErrNoSelection),
		errors.Is(err, rollcall.ErrInvalidParam),
		errors.Is(err, rollcall.ErrUnsupportedSource),
		errors.Is(err, rollcall.ErrDuplicateColumn),
		errors.As(err, &missing),
		errors.As(err, &column),
		errors.As(err, &malformed):
		return http.StatusBadRequest
	case errors.As(err, &srcErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeFailure(w http.ResponseWriter, err error) {
	writeError(w, statusOf(err), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
