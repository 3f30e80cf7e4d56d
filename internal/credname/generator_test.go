package credname

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"keydesk/pkg/requestcontext"
)

var nameShape = regexp.MustCompile(`^[a-zA-Z0-9._-]+-\d{14}$`)

func TestGenerate(t *testing.T) {
	base := time.Date(2026, 8, 28, 9, 5, 3, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), base)
	g := New()

	t.Run("uses the local part and the generation instant", func(t *testing.T) {
		assert.Equal(t, "a.b-20260828090503", g.Generate(ctx, "a.b@example.com"))
	})

	t.Run("replaces unsafe characters with underscores", func(t *testing.T) {
		assert.Equal(t, "tar__baz-20260828090503", g.Generate(ctx, "tarô baz@example.com"))
	})

	t.Run("keeps dots, underscores and hyphens", func(t *testing.T) {
		assert.Equal(t, "a.b_c-d-20260828090503", g.Generate(ctx, "a.b_c-d@example.com"))
	})

	t.Run("output shape holds for arbitrary identities", func(t *testing.T) {
		identities := []string{
			"a.b@example.com",
			"日本語@example.jp",
			"plain",
			"@example.com",
			"",
			"a b c@example.com",
			"UPPER.case@example.com",
		}
		for _, identity := range identities {
			name := g.Generate(ctx, identity)
			assert.Regexp(t, nameShape, name, "identity %q", identity)
		}
	})

	t.Run("same identity and second collide", func(t *testing.T) {
		first := g.Generate(ctx, "x@example.com")
		second := g.Generate(ctx, "x@example.com")
		assert.Equal(t, first, second)
	})

	t.Run("timestamp is UTC", func(t *testing.T) {
		jst := time.FixedZone("JST", 9*60*60)
		ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 8, 28, 9, 0, 0, 0, jst))
		assert.Equal(t, "x-20260828000000", g.Generate(ctx, "x@example.com"))
	})
}
