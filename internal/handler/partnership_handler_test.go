package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romeoalpha/admin/internal/model"
)

type mockProposalStore struct {
	submitFunc func(p model.PartnershipProposal) (model.PartnershipProposal, error)
}

func (m *mockProposalStore) Submit(p model.PartnershipProposal) (model.PartnershipProposal, error) {
	if m.submitFunc != nil {
		return m.submitFunc(p)
	}
	p.ID = "p-1"
	return p, nil
}

const validProposal = `{"companyName":"Acme Marine","representativeName":"Sam","email":"sam@acme.test","serviceInterest":"Salvage","message":"Hi"}`

func TestPartnershipHandler_Submit_Success(t *testing.T) {
	var captured model.PartnershipProposal
	h := NewPartnershipHandler(&mockProposalStore{
		submitFunc: func(p model.PartnershipProposal) (model.PartnershipProposal, error) {
			captured = p
			p.ID = "p-1"
			return p, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/api/partnership", strings.NewReader(validProposal)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"p-1"}`, rec.Body.String())
	assert.Equal(t, "Acme Marine", captured.CompanyName)
	assert.Equal(t, "Salvage", captured.ServiceInterest)
}

func TestPartnershipHandler_Submit_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{`, "invalid_json"},
		{"missing company", `{"representativeName":"Sam","email":"sam@acme.test","serviceInterest":"Salvage"}`, "companyName_required"},
		{"bad email", `{"companyName":"Acme","representativeName":"Sam","email":"nope","serviceInterest":"Salvage"}`, "email_invalid"},
		{"too long", `{"companyName":"Acme","representativeName":"Sam","email":"sam@acme.test","serviceInterest":"Salvage","message":"` + strings.Repeat("a", maxProposalMessageLength+1) + `"}`, "message_too_long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := NewPartnershipHandler(&mockProposalStore{
				submitFunc: func(p model.PartnershipProposal) (model.PartnershipProposal, error) {
					called = true
					return p, nil
				},
			})

			rec := httptest.NewRecorder()
			h.Submit(rec, httptest.NewRequest(http.MethodPost, "/api/partnership", strings.NewReader(tt.body)))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.want, body["error"])
			assert.False(t, called)
		})
	}
}

func TestPartnershipHandler_Submit_StoreError(t *testing.T) {
	h := NewPartnershipHandler(&mockProposalStore{
		submitFunc: func(model.PartnershipProposal) (model.PartnershipProposal, error) {
			return model.PartnershipProposal{}, errors.New("disk full")
		},
	})

	rec := httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/api/partnership", strings.NewReader(validProposal)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
