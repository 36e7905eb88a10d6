package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/menusheet"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/repository"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// writeRepoError 仓储/服务错误到 HTTP 状态码
func (h *Handlers) writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Fail("configuration not found"))
	case errors.Is(err, repository.ErrOwnerMismatch):
		writeJSON(w, http.StatusForbidden, Fail("configuration belongs to another owner"))
	case errors.Is(err, repository.ErrDomainTaken):
		writeJSON(w, http.StatusConflict, Fail("custom domain is used by another configuration"))
	case errors.Is(err, service.ErrUnknownTemplate):
		writeJSON(w, http.StatusUnprocessableEntity, Fail(err.Error()))
	default:
		h.logger.Error("Configuration request failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, Fail("storage unavailable"))
	}
}

func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.sites.ListTemplates()))
}

func (h *Handlers) ListConfigurations(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	list, err := h.sites.ListDrafts(r.Context(), ownerID)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	if list == nil {
		list = []*domain.Configuration{}
	}
	writeJSON(w, http.StatusOK, Ok(list))
}

func (h *Handlers) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var cfg domain.Configuration
	if err := readBodyJSON(r, maxBodyBytes, &cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid configuration document"))
		return
	}
	created, err := h.sites.CreateDraft(r.Context(), service.CreateDraftRequest{OwnerID: ownerID, Configuration: cfg})
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(created))
}

func (h *Handlers) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	cfg, err := h.sites.GetDraft(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(cfg))
}

func (h *Handlers) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	var cfg domain.Configuration
	if err := readBodyJSON(r, maxBodyBytes, &cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid configuration document"))
		return
	}
	updated, err := h.sites.UpdateDraft(r.Context(), service.UpdateDraftRequest{
		ID: chi.URLParam(r, "id"), OwnerID: ownerID, Configuration: cfg,
	})
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(updated))
}

// RenderConfiguration GET /configurations/{id}/render?page= 渲染草稿（不要求已发布）
func (h *Handlers) RenderConfiguration(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	cfg, err := h.sites.GetDraft(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(h.sites.RenderPage(cfg, r.URL.Query().Get("page"))))
}

// ExportMenu GET /configurations/{id}/menu.xlsx
func (h *Handlers) ExportMenu(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	cfg, err := h.sites.GetDraft(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	data, err := menusheet.Export(cfg)
	if err != nil {
		h.logger.Error("Failed to export menu", zap.String("configuration_id", cfg.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to export menu"))
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="menu-%s.xlsx"`, cfg.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type importMenuResponse struct {
	Imported int                  `json:"imported"`
	Skipped  []menusheet.RowError `json:"skipped,omitempty"`
}

// ImportMenu POST /configurations/{id}/menu.xlsx（multipart 字段 file，或直接上传文件内容）
// 导入结果整体替换菜单条目；新的分类追加到已有分类之后
func (h *Handlers) ImportMenu(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(w, r)
	if !ok {
		return
	}
	cfg, err := h.sites.GetDraft(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	var src io.Reader
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("multipart field 'file' is required"))
			return
		}
		defer file.Close()
		src = file
	} else {
		body, err := io.ReadAll(io.LimitReader(r.Body, 10*maxBodyBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("failed to read upload"))
			return
		}
		src = bytes.NewReader(body)
	}

	res, err := menusheet.Import(src)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, Fail(err.Error()))
		return
	}
	cfg.MenuItems = res.Items
	cfg.Categories = domain.NewCategories(append(append([]string{}, cfg.Categories...), res.Categories...)...)
	if _, err := h.sites.UpdateDraft(r.Context(), service.UpdateDraftRequest{ID: cfg.ID, OwnerID: ownerID, Configuration: *cfg}); err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(importMenuResponse{Imported: len(res.Items), Skipped: res.Skipped}))
}
