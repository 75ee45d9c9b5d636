package api

import (
	"net/http"

	"github.com/yukyu/ledger/internal/audit"
)

// handleListAudit implements GET /audit (§6): paginated audit entries,
// optionally narrowed to one entity_kind or actor.
func (h *Handlers) handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := parsePage(r)

	rows, total, err := h.Audit.List(r.Context(), audit.ListFilter{
		EntityKind: q.Get("entity_kind"),
		Actor:      q.Get("actor"),
	}, p.Limit, p.offset())
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, rows, p, total)
}
