package financial

import (
	"context"
	"net/http"

	"github.com/frahmantamala/financial-analyst/internal/transport"
)

type ServiceAPI interface {
	GetCompanyFinancials(ctx context.Context, userID, companyID int64) (*Table, error)
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

// GetFinancials handles GET /companies/{companyID}/financials
func (h *Handler) GetFinancials(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	companyID, err := h.IDParam(r, "companyID")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	table, err := h.Service.GetCompanyFinancials(r.Context(), user.ID, companyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, table)
}
