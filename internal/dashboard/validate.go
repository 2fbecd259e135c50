package dashboard

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/romeoalpha/admin/internal/model"
)

// Operator-facing messages for rejected input.
const (
	msgListingRequired = "Title and Description are required"
	msgListingCategory = "Category must be one of sale, hire, repair, scrap"
	msgAdRequired      = "Title and Image are required"
	msgFaqRequired     = "Question and Answer are required"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateListing(f model.MarketplaceItemFields) error {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	failed := failedFields(validate.Struct(f))
	switch {
	case failed["Title"] || failed["Description"]:
		return &ValidationError{Message: msgListingRequired}
	case failed["Category"]:
		return &ValidationError{Message: msgListingCategory}
	case len(failed) > 0:
		return &ValidationError{Message: "invalid listing"}
	}
	return nil
}

func validateAd(f model.AdFields) error {
	f.Title = strings.TrimSpace(f.Title)
	if len(failedFields(validate.Struct(f))) > 0 {
		return &ValidationError{Message: msgAdRequired}
	}
	return nil
}

func validateFaq(f model.FaqFields) error {
	f.Question = strings.TrimSpace(f.Question)
	f.Answer = strings.TrimSpace(f.Answer)
	if len(failedFields(validate.Struct(f))) > 0 {
		return &ValidationError{Message: msgFaqRequired}
	}
	return nil
}

func failedFields(err error) map[string]bool {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return map[string]bool{"": true}
	}
	out := make(map[string]bool, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = true
	}
	return out
}
