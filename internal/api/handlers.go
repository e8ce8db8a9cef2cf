package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mmrzaf/empgen/internal/app"
	"github.com/mmrzaf/empgen/internal/domain"
	"github.com/mmrzaf/empgen/internal/exporter"
	"github.com/mmrzaf/empgen/internal/infra/repos/exports"
	"github.com/mmrzaf/empgen/internal/logging"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc       *app.ExportService
	outputDir string
	logger    *logging.Logger
}

func NewHandler(svc *app.ExportService, outputDir string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{svc: svc, outputDir: outputDir, logger: logger.WithComponent("api")}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Export *domain.ExportRun `json:"export,omitempty"`
}

func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	batch, err := h.svc.Generate(&req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, batch)
}

// CreateExport generates a batch and writes it to <output-dir>/<batch-id>/employees.xlsx.
func (h *Handler) CreateExport(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerateRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	batch, err := h.svc.Generate(&req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	dir := filepath.Join(h.outputDir, batch.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		h.logger.Error("Failed to create export folder %s: %v", dir, err)
		writeError(w, r, http.StatusInternalServerError, "failed to prepare export folder")
		return
	}

	run, err := h.svc.Export(batch, filepath.Join(dir, exporter.DefaultFileName))
	if err != nil {
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: app.FailureMessage(err), Export: run})
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, run)
}

func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	status := r.URL.Query().Get("status")
	switch domain.ExportStatus(status) {
	case "", domain.ExportStatusRunning, domain.ExportStatusSuccess, domain.ExportStatusFailed:
	default:
		writeError(w, r, http.StatusBadRequest, "unknown status: "+status)
		return
	}

	list, err := h.svc.ListExports(limit, status)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	render.JSON(w, r, list)
}

func (h *Handler) GetExport(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupExport(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, run)
}

func (h *Handler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookupExport(w, r)
	if !ok {
		return
	}
	if run.Status != domain.ExportStatusSuccess {
		writeError(w, r, http.StatusConflict, fmt.Sprintf("export %s is %s", run.ID, run.Status))
		return
	}
	if !h.insideOutputDir(run.Path) {
		writeError(w, r, http.StatusNotFound, "export file not available")
		return
	}
	if _, err := os.Stat(run.Path); err != nil {
		writeError(w, r, http.StatusNotFound, "export file not available")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(run.Path)))
	http.ServeFile(w, r, run.Path)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":    "ok",
		"providers": h.svc.Providers(),
	})
}

func (h *Handler) lookupExport(w http.ResponseWriter, r *http.Request) (*domain.ExportRun, bool) {
	id := chi.URLParam(r, "id")
	run, err := h.svc.GetExport(id)
	if err != nil {
		if errors.Is(err, exports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, err.Error())
			return nil, false
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return run, true
}

func (h *Handler) insideOutputDir(path string) bool {
	base, err := filepath.Abs(h.outputDir)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(base, abs)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}

func decodeJSONStrict(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
