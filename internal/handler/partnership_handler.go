package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/romeoalpha/admin/internal/model"
)

const maxProposalMessageLength = 5000

// ProposalSubmitter stores partnership proposals.
type ProposalSubmitter interface {
	Submit(p model.PartnershipProposal) (model.PartnershipProposal, error)
}

// PartnershipHandler accepts proposals from the public partnership form.
type PartnershipHandler struct {
	store    ProposalSubmitter
	validate *validator.Validate
}

// NewPartnershipHandler creates a PartnershipHandler writing to store.
func NewPartnershipHandler(store ProposalSubmitter) *PartnershipHandler {
	return &PartnershipHandler{store: store, validate: validator.New(validator.WithRequiredStructEnabled())}
}

type proposalRequest struct {
	CompanyName        string `json:"companyName"`
	RepresentativeName string `json:"representativeName"`
	Email              string `json:"email"`
	ServiceInterest    string `json:"serviceInterest"`
	Message            string `json:"message"`
}

// Submit handles POST /api/partnership.
// companyName, representativeName, email and serviceInterest are required.
func (h *PartnershipHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req proposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	p := model.PartnershipProposal{
		CompanyName:        strings.TrimSpace(req.CompanyName),
		RepresentativeName: strings.TrimSpace(req.RepresentativeName),
		Email:              strings.TrimSpace(req.Email),
		ServiceInterest:    strings.TrimSpace(req.ServiceInterest),
		Message:            strings.TrimSpace(req.Message),
	}
	if err := h.validate.Struct(p); err != nil {
		writeError(w, http.StatusBadRequest, validationCode(err))
		return
	}
	if len([]rune(p.Message)) > maxProposalMessageLength {
		writeError(w, http.StatusBadRequest, "message_too_long")
		return
	}

	saved, err := h.store.Submit(p)
	if err != nil {
		slog.Error("failed to store proposal", "error", err)
		writeError(w, http.StatusInternalServerError, "submit_failed")
		return
	}
	slog.Info("partnership proposal received", "id", saved.ID, "company", saved.CompanyName)
	writeJSON(w, http.StatusCreated, map[string]string{"id": saved.ID})
}

// validationCode names the first failing field, e.g. "email_invalid".
func validationCode(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return "invalid_request"
	}
	fe := errs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	if fe.Tag() == "required" {
		return field + "_required"
	}
	return field + "_invalid"
}
