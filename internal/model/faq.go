package model

// FaqEntry is a question/answer pair shown on the public FAQ page.
type FaqEntry struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FaqFields carries the writable fields of a FAQ entry.
type FaqFields struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}
