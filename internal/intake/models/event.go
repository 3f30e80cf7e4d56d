// Package models defines the intake event shapes. An event is one form
// submission delivered by the hosting frontend; it is read-only for the
// duration of one workflow invocation.
package models

// FormAnswers is the structured form-response shape. Some delivery
// mechanisms expose the respondent's address directly; when present it is
// the highest-priority identity source.
type FormAnswers struct {
	RespondentEmail string
}

// SubmissionEvent is a tagged union of the possible intake shapes plus the
// row locator. At most one of Answers and NamedValues is expected to be
// populated, but the identity extractor copes with any combination by
// trying sources in fixed priority order.
type SubmissionEvent struct {
	// Answers is the structured accessor shape, if the delivery provides one.
	Answers *FormAnswers

	// NamedValues maps form field names to the ordered values submitted.
	NamedValues map[string][]string

	// Row locates this event's row in the row store. Each invocation owns
	// a distinct row; there is no cross-invocation coordination.
	Row int
}
