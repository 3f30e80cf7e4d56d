// Package credname derives charset-safe credential names from requester
// identities.
package credname

import (
	"context"
	"regexp"
	"strings"

	"keydesk/pkg/email"
	"keydesk/pkg/requestcontext"
)

// timestampLayout is second-resolution; two generations for the same
// identity within the same second produce the same name.
const timestampLayout = "20060102150405"

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Generator produces credential names shaped like
// "<sanitized-local-part>-<yyyymmddhhmmss>". It never fails.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

// Generate sanitizes the local part of the identity and appends the
// generation instant, read from the request context clock.
func (g *Generator) Generate(ctx context.Context, identity string) string {
	local := unsafeChars.ReplaceAllString(email.LocalPart(identity), "_")
	if local == "" {
		local = "_"
	}

	var b strings.Builder
	b.WriteString(local)
	b.WriteByte('-')
	b.WriteString(requestcontext.Now(ctx).UTC().Format(timestampLayout))
	return b.String()
}
