package company

import (
	"context"
	"net/http"

	"github.com/frahmantamala/financial-analyst/internal/transport"
)

type ServiceAPI interface {
	CompanyPicker(ctx context.Context, userID int64) (CompaniesResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetCompanies handles GET /companies
func (h *Handler) GetCompanies(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	resp, err := h.Service.CompanyPicker(r.Context(), user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
