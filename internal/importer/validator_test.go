package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRowNormalizes(t *testing.T) {
	p, msgs := ValidateRow(map[string]string{
		"name":        "  Widget  ",
		"description": " A fine widget ",
		"status":      "1",
		"category":    " tools ",
	})
	require.Empty(t, msgs)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, "A fine widget", p.Description)
	assert.Equal(t, "1", p.Status)
	assert.Equal(t, "tools", p.Category)
}

func TestValidateRowNameRequired(t *testing.T) {
	_, msgs := ValidateRow(map[string]string{
		"name":     "   ",
		"status":   "1",
		"category": "tools",
	})
	require.Equal(t, []string{"name is required"}, msgs)
}

func TestValidateRowStatusDefaultsToInactive(t *testing.T) {
	// Absent or empty status means "0" (inactive), the catalog's sentinel for
	// rows uploaded without an explicit status.
	for _, raw := range []map[string]string{
		{"name": "Widget", "category": "tools"},
		{"name": "Widget", "status": "", "category": "tools"},
	} {
		p, msgs := ValidateRow(raw)
		require.Empty(t, msgs)
		assert.Equal(t, "0", p.Status)
	}
}

func TestValidateRowWhitespaceStatusRejected(t *testing.T) {
	// Whitespace is present-but-blank, not absent, so no default applies.
	_, msgs := ValidateRow(map[string]string{
		"name":     "Widget",
		"status":   "   ",
		"category": "tools",
	})
	require.Equal(t, []string{"status is required"}, msgs)
}

func TestValidateRowDescriptionOptional(t *testing.T) {
	p, msgs := ValidateRow(map[string]string{
		"name":     "Widget",
		"status":   "1",
		"category": "tools",
	})
	require.Empty(t, msgs)
	assert.Equal(t, "", p.Description)
}

func TestValidateRowLengthLimits(t *testing.T) {
	_, msgs := ValidateRow(map[string]string{
		"name":        strings.Repeat("n", 256),
		"description": strings.Repeat("d", 1001),
		"status":      strings.Repeat("s", 101),
		"category":    strings.Repeat("c", 101),
	})
	require.Equal(t, []string{
		"name must be at most 255 characters",
		"description must be at most 1000 characters",
		"status must be at most 100 characters",
		"category must be at most 100 characters",
	}, msgs)
}

func TestValidateRowDeterministic(t *testing.T) {
	raw := map[string]string{"description": strings.Repeat("d", 1001)}
	_, first := ValidateRow(raw)
	_, second := ValidateRow(raw)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{
		"name is required",
		"description must be at most 1000 characters",
		"category is required",
	}, first)
}
