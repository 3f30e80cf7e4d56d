package handler

import (
	"keydesk/internal/intake/models"
	dErrors "keydesk/pkg/domain-errors"
)

// SubmissionRequest is the HTTP request body for POST /v1/submissions.
type SubmissionRequest struct {
	Row         int                 `json:"row"`
	NamedValues map[string][]string `json:"namedValues,omitempty"`
	Answers     *AnswersRequest     `json:"answers,omitempty"`
}

// AnswersRequest is the structured-accessor shape of a submission.
type AnswersRequest struct {
	RespondentEmail string `json:"respondentEmail"`
}

// Validate checks structural invariants before the event enters the
// workflow. Identity validation happens inside the workflow, not here.
func (r *SubmissionRequest) Validate() error {
	if r.Row < 1 {
		return dErrors.New(dErrors.CodeValidation, "row must be a positive row index")
	}
	return nil
}

// ToEvent converts the request into the workflow's event shape.
func (r *SubmissionRequest) ToEvent() models.SubmissionEvent {
	event := models.SubmissionEvent{
		NamedValues: r.NamedValues,
		Row:         r.Row,
	}
	if r.Answers != nil {
		event.Answers = &models.FormAnswers{RespondentEmail: r.Answers.RespondentEmail}
	}
	return event
}
