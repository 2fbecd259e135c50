package model

import "time"

// PartnershipProposal is a partnership enquiry submitted via the public form.
// JSON names match the records written by the partnership form.
type PartnershipProposal struct {
	ID                 string    `json:"id"`
	CompanyName        string    `json:"companyName" validate:"required"`
	RepresentativeName string    `json:"representativeName" validate:"required"`
	Email              string    `json:"email" validate:"required,email"`
	ServiceInterest    string    `json:"serviceInterest" validate:"required"`
	Message            string    `json:"message"`
	Date               time.Time `json:"date"`
}
