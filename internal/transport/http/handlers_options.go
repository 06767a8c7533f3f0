package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agrilink/internal/options"
	"agrilink/pkg/platform/httputil"
)

// OptionsHandler serves the read-only enumeration lists.
type OptionsHandler struct {
	service *options.Service
}

func NewOptionsHandler(service *options.Service) *OptionsHandler {
	return &OptionsHandler{service: service}
}

// HandleList handles GET /options/{list}.
func (h *OptionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "list")
	values, err := h.service.List(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"name": name, "values": values})
}
