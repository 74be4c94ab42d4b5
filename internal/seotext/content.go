package seotext

// FAQ is one question/answer pair rendered on a page.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Content is the text payload a generated page renders. Only Title is
// expected to be present; every other field may be empty.
type Content struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Heading     string   `json:"heading,omitempty"`
	Subheadings []string `json:"subheadings,omitempty"`
	FAQs        []FAQ    `json:"faqs,omitempty"`
	Body        string   `json:"body,omitempty"`
}
