package api

import (
	"net/http"
	"time"

	"platform-registry/internal/domain"
)

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{Page: pageFromQuery(r)}
	if v := q.Get("principal"); v != "" {
		filter.PrincipalName = &v
	}
	if v := q.Get("action"); v != "" {
		filter.Action = &v
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, domain.ErrValidation("invalid since timestamp: %v", err))
			return
		}
		filter.Since = &since
	}

	entries, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	items := make([]auditEntryPayload, 0, len(entries))
	for _, e := range entries {
		items = append(items, auditToAPI(e))
	}
	respondJSON(w, http.StatusOK, listResponse[auditEntryPayload]{
		Items:         items,
		TotalCount:    total,
		NextPageToken: domain.NextPageToken(filter.Page.Offset(), filter.Page.Limit(), total),
	})
}
