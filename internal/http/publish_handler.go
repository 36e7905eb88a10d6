package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/deploy"
	"github.com/synca-ui/builder-quantum-landing-sub001/internal/service"
)

type publishAccepted struct {
	AttemptID string       `json:"attemptId"`
	Stage     deploy.Stage `json:"stage"`
}

// publishTerminal 发布结束时的响应（wait=true 与 stream 的最后一条消息）
type publishTerminal struct {
	Success      bool          `json:"success"`
	AttemptID    string        `json:"attemptId,omitempty"`
	PublishedURL string        `json:"publishedUrl,omitempty"`
	PreviewURL   string        `json:"previewUrl,omitempty"`
	PublishedAt  *time.Time    `json:"publishedAt,omitempty"`
	Error        *deploy.Error `json:"error,omitempty"`
}

type progressMessage struct {
	Stage   deploy.Stage `json:"stage"`
	Message string       `json:"message,omitempty"`
}

func terminalFrom(st *service.PublishStatus) publishTerminal {
	t := publishTerminal{AttemptID: st.AttemptID, Error: st.Error}
	if res := st.Result; res != nil {
		at := res.PublishedAt
		t.Success = true
		t.PublishedURL = res.PublishedURL
		t.PreviewURL = res.PreviewURL
		t.PublishedAt = &at
	}
	return t
}

func terminalFromEvent(ev deploy.Event) publishTerminal {
	return terminalFrom(&service.PublishStatus{AttemptID: ev.AttemptID, Result: ev.Result, Error: ev.Err})
}

// statusForError 发布错误到 HTTP 状态码
func statusForError(e *deploy.Error) int {
	if e == nil {
		return http.StatusOK
	}
	if e.Reason == deploy.ReasonNotFound {
		return http.StatusNotFound
	}
	switch e.Kind {
	case deploy.KindInput:
		return http.StatusUnprocessableEntity
	case deploy.KindConflict, deploy.KindBusy:
		return http.StatusConflict
	}
	return http.StatusServiceUnavailable
}

// StartPublish POST {candidateAddress, configurationId, ownerToken}
// 默认 202 + attemptId；?wait=true 时阻塞到结束并返回最终结果
func (h *Handlers) StartPublish(w http.ResponseWriter, r *http.Request) {
	var req service.StartPublishRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, publishTerminal{Error: &deploy.Error{
			Stage: deploy.StageValidating, Kind: deploy.KindInput, Reason: "bad_request", Message: "invalid request body",
		}})
		return
	}
	if req.OwnerToken == "" {
		req.OwnerToken = bearerToken(r)
	}

	st, err := h.publish.Start(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, publishTerminal{Error: &deploy.Error{
				Stage: deploy.StageValidating, Kind: deploy.KindInput, Reason: "unauthorized", Message: err.Error(),
			}})
			return
		}
		h.logger.Error("Failed to start publish", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, publishTerminal{Error: &deploy.Error{
			Stage: deploy.StageValidating, Kind: deploy.KindTransient, Reason: deploy.ReasonStorage, Message: "could not start publish",
		}})
		return
	}

	if !parseBool(r.URL.Query().Get("wait")) {
		writeJSON(w, http.StatusAccepted, publishAccepted{AttemptID: st.AttemptID, Stage: st.Stage})
		return
	}

	final, err := h.publish.Wait(r.Context(), st.AttemptID)
	if err != nil {
		// the caller went away: stop at the next stage boundary
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			_ = h.publish.Abandon(st.AttemptID)
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, publishTerminal{AttemptID: st.AttemptID})
		return
	}
	writeJSON(w, statusForError(final.Error), terminalFrom(final))
}

// PublishStatus GET /publish/{attemptId}
func (h *Handlers) PublishStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.publish.Status(chi.URLParam(r, "attemptId"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// AbandonPublish DELETE /publish/{attemptId}
func (h *Handlers) AbandonPublish(w http.ResponseWriter, r *http.Request) {
	err := h.publish.Abandon(chi.URLParam(r, "attemptId"))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
	case errors.Is(err, service.ErrJobFinished):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	}
}

// StreamPublish GET /publish/{attemptId}/stream (WebSocket)
// 每个阶段推送 {stage, message?}，最后推送终止结果后关闭连接
func (h *Handlers) StreamPublish(w http.ResponseWriter, r *http.Request) {
	events, unsubscribe, err := h.publish.Subscribe(chi.URLParam(r, "attemptId"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// drain control frames so a client close is noticed
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			var msg any = progressMessage{Stage: ev.Stage, Message: ev.Message}
			if ev.Stage.Terminal() {
				msg = terminalFromEvent(ev)
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			if ev.Stage.Terminal() {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(ev.Stage)),
					time.Now().Add(time.Second))
				return
			}
		}
	}
}
