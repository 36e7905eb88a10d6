package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

type validateAddressRequest struct {
	CandidateName string `json:"candidateName"`
	OwnerID       string `json:"ownerId,omitempty"`
}

type validateAddressResponse struct {
	Available   bool     `json:"available"`
	Reason      string   `json:"reason,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	FullAddress string   `json:"fullAddress,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// ValidateAddress POST {candidateName, ownerId?} 或 GET ?candidateName=&ownerId=
// owner 取自 Authorization token；无效 token 返回 401
func (h *Handlers) ValidateAddress(w http.ResponseWriter, r *http.Request) {
	var req validateAddressRequest
	if r.Method == http.MethodGet {
		req.CandidateName = r.URL.Query().Get("candidateName")
		req.OwnerID = r.URL.Query().Get("ownerId")
	} else if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, validateAddressResponse{Error: "invalid request body"})
		return
	}

	// owned 只对持有 token 的 owner 返回；请求里的 ownerId 不可信
	ownerID := ""
	if bearerToken(r) != "" {
		id, ok := h.owner(w, r)
		if !ok {
			return
		}
		ownerID = id
	}
	if req.OwnerID != "" && req.OwnerID != ownerID {
		h.logger.Debug("Ignoring unauthenticated ownerId", zap.String("owner_id", req.OwnerID))
	}

	res, err := h.addresses.Validate(r.Context(), req.CandidateName, ownerID)
	if err != nil {
		h.logger.Error("Address validation failed", zap.String("candidate", req.CandidateName), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, validateAddressResponse{Error: "address namespace unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, validateAddressResponse{
		Available:   res.Available,
		Reason:      string(res.Reason),
		Suggestions: res.Suggestions,
		FullAddress: res.FullAddress,
	})
}
