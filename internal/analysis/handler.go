package analysis

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/financial-analyst/internal/transport"
)

type ServiceAPI interface {
	Ask(ctx context.Context, userID, companyID int64, dto QuestionDTO) (*AnswerResponse, error)
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

// AskQuestion handles POST /companies/{companyID}/questions
func (h *Handler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	companyID, err := h.IDParam(r, "companyID")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto QuestionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Ask(r.Context(), user.ID, companyID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
