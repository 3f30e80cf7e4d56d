// Package workflow sequences one intake event from submission to terminal
// outcome: extract identity, resolve expiration, build a credential name,
// call the issuance API, notify, and record. One invocation owns one row
// and runs to completion synchronously.
package workflow

import (
	"context"
	"log/slog"
	"time"

	"keydesk/internal/audit"
	"keydesk/internal/intake/models"
	"keydesk/internal/issuance"
	"keydesk/internal/outcome"
	"keydesk/internal/workflow/metrics"
	dErrors "keydesk/pkg/domain-errors"
	"keydesk/pkg/requestcontext"
)

// State names a position in the processing lifecycle. Terminal states are
// StateRecorded on success and StateAdminNotified on failure.
type State string

const (
	StateReceived           State = "Received"
	StateIdentityResolved   State = "IdentityResolved"
	StateExpirationResolved State = "ExpirationResolved"
	StateCredentialBuilt    State = "CredentialBuilt"
	StateIssued             State = "Issued"
	StateNotifiedSuccess    State = "NotifiedSuccess"
	StateRecorded           State = "Recorded"
	StateFailed             State = "Failed"
	StateRecordedFailure    State = "RecordedFailure"
	StateAdminNotified      State = "AdminNotified"
)

// Form field name the expiration request is submitted under. When the event
// carries no such answer the row store's expiration column is consulted; a
// still-missing text simply resolves to the default offset.
const expiryFieldName = "利用期間"

type IdentityExtractor interface {
	Extract(ctx context.Context, event models.SubmissionEvent) (string, error)
}

type ExpiryResolver interface {
	Resolve(ctx context.Context, text string, defaultDays int) time.Time
}

type NameGenerator interface {
	Generate(ctx context.Context, identity string) string
}

type Issuer interface {
	Issue(ctx context.Context, req issuance.CredentialRequest) (*issuance.IssuedCredential, error)
}

type Notifier interface {
	Success(ctx context.Context, requester string, cred issuance.IssuedCredential) error
	Failure(ctx context.Context, cause error, requester string, row int)
}

type OutcomeRecorder interface {
	Record(ctx context.Context, row int, o outcome.RowOutcome)
}

type ExpiryTextReader interface {
	ExpiryText(ctx context.Context, row int) (string, error)
}

type AuditSink interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Result reports how far one invocation got. The row store is the durable
// record; Result exists for callers that want to log or respond.
type Result struct {
	State          State
	Status         outcome.Status
	Requester      string
	CredentialName string
	Err            error
}

// Service orchestrates the submission pipeline.
type Service struct {
	identities IdentityExtractor
	expiries   ExpiryResolver
	names      NameGenerator
	issuer     Issuer
	notifier   Notifier
	recorder   OutcomeRecorder
	rows       ExpiryTextReader

	accessPolicyID    string
	defaultExpiryDays int

	logger  *slog.Logger
	sink    AuditSink
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditSink(sink AuditSink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(
	identities IdentityExtractor,
	expiries ExpiryResolver,
	names NameGenerator,
	issuer Issuer,
	notifier Notifier,
	recorder OutcomeRecorder,
	rows ExpiryTextReader,
	accessPolicyID string,
	defaultExpiryDays int,
	opts ...Option,
) *Service {
	s := &Service{
		identities:        identities,
		expiries:          expiries,
		names:             names,
		issuer:            issuer,
		notifier:          notifier,
		recorder:          recorder,
		rows:              rows,
		accessPolicyID:    accessPolicyID,
		defaultExpiryDays: defaultExpiryDays,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process runs one submission to a terminal state. It never returns an
// error: every failure is absorbed into the row store, the admin alert, and
// the returned Result.
func (s *Service) Process(ctx context.Context, event models.SubmissionEvent) Result {
	start := time.Now()

	requester, err := s.identities.Extract(ctx, event)
	if err != nil {
		return s.fail(ctx, event.Row, "", err, start)
	}

	expiresAt := s.expiries.Resolve(ctx, s.expiryText(ctx, event), s.defaultExpiryDays)
	name := s.names.Generate(ctx, requester)

	issueStart := time.Now()
	cred, err := s.issuer.Issue(ctx, issuance.CredentialRequest{
		Name:           name,
		ExpiresAt:      expiresAt,
		AccessPolicyID: s.accessPolicyID,
	})
	s.metrics.ObserveIssuanceLatency(time.Since(issueStart))
	if err != nil {
		return s.fail(ctx, event.Row, requester, err, start)
	}

	if err := s.notifier.Success(ctx, requester, *cred); err != nil {
		// The credential is live but the requester never saw the secret.
		// Recorded as a failure so the row reflects what the requester
		// experienced; the orphaned credential is an accepted risk.
		s.logger.ErrorContext(ctx, "success notification failed after issuance",
			"row", event.Row, "credential_name", cred.Name, "error", err)
		return s.fail(ctx, event.Row, requester, err, start)
	}

	s.recorder.Record(ctx, event.Row, outcome.RowOutcome{
		Status:         outcome.StatusSuccess,
		CredentialName: cred.Name,
		ExpiresAt:      cred.ExpiresAt,
	})

	s.emitAudit(ctx, event.Row, requester, outcome.StatusSuccess, "")
	s.metrics.IncrementOutcome(string(outcome.StatusSuccess), "")
	s.metrics.ObserveProcessLatency(time.Since(start))

	s.logger.InfoContext(ctx, "submission processed",
		"row", event.Row, "requester", requester, "credential_name", cred.Name)

	return Result{
		State:          StateRecorded,
		Status:         outcome.StatusSuccess,
		Requester:      requester,
		CredentialName: cred.Name,
	}
}

// fail drives the failure arm of the state machine: record the outcome,
// alert the administrator, emit audit. Recorder and alert failures never
// escalate past their own logging.
func (s *Service) fail(ctx context.Context, row int, requester string, cause error, start time.Time) Result {
	kind := failureKind(cause)

	s.logger.ErrorContext(ctx, "submission failed",
		"row", row, "requester", requester, "kind", kind, "error", cause)

	s.recorder.Record(ctx, row, outcome.RowOutcome{
		Status:      outcome.StatusFailure,
		ErrorDetail: dErrors.Detail(cause),
	})

	s.notifier.Failure(ctx, cause, requester, row)

	s.emitAudit(ctx, row, requester, outcome.StatusFailure, kind)
	s.metrics.IncrementOutcome(string(outcome.StatusFailure), kind)
	s.metrics.ObserveProcessLatency(time.Since(start))

	return Result{
		State:     StateAdminNotified,
		Status:    outcome.StatusFailure,
		Requester: requester,
		Err:       cause,
	}
}

// expiryText finds the requested expiration wording for this event. Either
// source may be absent; the resolver treats an empty text as "use default".
func (s *Service) expiryText(ctx context.Context, event models.SubmissionEvent) string {
	if values, ok := event.NamedValues[expiryFieldName]; ok && len(values) > 0 && values[0] != "" {
		return values[0]
	}
	text, err := s.rows.ExpiryText(ctx, event.Row)
	if err != nil {
		s.logger.WarnContext(ctx, "expiration text unavailable from row store",
			"row", event.Row, "error", err)
		return ""
	}
	return text
}

func (s *Service) emitAudit(ctx context.Context, row int, requester string, status outcome.Status, reason string) {
	if s.sink == nil {
		return
	}
	event := audit.Stamp(audit.Event{
		Row:       row,
		Requester: requester,
		Status:    string(status),
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err := s.sink.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "row", row, "error", err)
	}
}

// failureKind labels a failure for metrics and audit.
func failureKind(err error) string {
	for _, code := range []dErrors.Code{
		dErrors.CodeIdentity,
		dErrors.CodeTransport,
		dErrors.CodeAPI,
		dErrors.CodeResponseParse,
		dErrors.CodeNotification,
	} {
		if dErrors.HasCode(err, code) {
			return string(code)
		}
	}
	return string(dErrors.CodeInternal)
}
