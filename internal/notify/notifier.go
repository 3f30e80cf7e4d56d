package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"keydesk/internal/issuance"
	dErrors "keydesk/pkg/domain-errors"
	"keydesk/pkg/email"
	"keydesk/pkg/requestcontext"
)

const (
	successSubject = "Your API credential is ready"
	failureSubject = "[keydesk] credential issuance failed"

	// disclosureNotice is sent with every success message. The external
	// service does not allow recovering an issued secret, so this is the
	// requester's only copy.
	disclosureNotice = "This secret is shown only once and cannot be recovered. " +
		"Treat it as confidential: do not share it, commit it, or store it in plain text."
)

// Notifier composes and sends the workflow's two messages. Success delivery
// failures are reported to the caller (they change the recorded outcome);
// failure-alert delivery problems are logged and swallowed so they can never
// mask the original processing error.
type Notifier struct {
	mailer     Mailer
	adminEmail string
	logger     *slog.Logger
}

func NewNotifier(mailer Mailer, adminEmail string, logger *slog.Logger) *Notifier {
	return &Notifier{
		mailer:     mailer,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// Success sends the one email carrying the credential secret to the
// requester.
func (n *Notifier) Success(ctx context.Context, requester string, cred issuance.IssuedCredential) error {
	first, last := email.DeriveNameFromEmail(requester)

	body := fmt.Sprintf(`Hello %s %s,

Your API credential has been issued.

  Name:       %s
  Secret:     %s
  Expires at: %s

%s
`, first, last, cred.Name, cred.SecretValue, cred.ExpiresAt, disclosureNotice)

	if err := n.mailer.Send(ctx, Message{
		To:      requester,
		ToName:  first + " " + last,
		Subject: successSubject,
		Body:    body,
	}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeNotification, "success notification failed")
	}
	return nil
}

// Failure alerts the administrator about a failed invocation. It never
// returns an error; with no administrator configured it is a logged no-op.
func (n *Notifier) Failure(ctx context.Context, cause error, requester string, row int) {
	if n.adminEmail == "" {
		n.logger.WarnContext(ctx, "no admin email configured, skipping failure alert",
			"row", row,
			"error", cause,
		)
		return
	}

	if requester == "" {
		requester = "(unknown)"
	}

	body := fmt.Sprintf(`A credential request could not be completed.

  Time:      %s
  Row:       %d
  Requester: %s
  Error:     %v

Check the row store for the recorded outcome.
`, requestcontext.Now(ctx).UTC().Format(time.RFC3339), row, requester, cause)

	if err := n.mailer.Send(ctx, Message{
		To:      n.adminEmail,
		Subject: failureSubject,
		Body:    body,
	}); err != nil {
		n.logger.ErrorContext(ctx, "failure alert could not be sent",
			"row", row,
			"admin_email", n.adminEmail,
			"error", err,
		)
	}
}
