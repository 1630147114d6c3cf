package eventform

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"eventplanner/internal/models"
)

var testNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := testNow.Add(d)
	return &t
}

func validDraft() *Draft {
	d := NewDraft("u1")
	d.Title = "Concert"
	d.Description = "fun"
	d.Place = "Prague"
	d.WindowStart = at(24 * time.Hour)
	d.WindowEnd = at(26 * time.Hour)
	d.Images = []models.Attachment{{Filename: "a.png", Data: []byte("a")}}
	return d
}

// ============================================================================
// Field Validator Tests
// ============================================================================

func TestValidateTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"empty", "", false},
		{"two chars", "ab", false},
		{"three chars", "abc", true},
		{"padded short", "  ab  ", false},
		{"padded ok", "  abc  ", true},
		{"fifty chars", strings.Repeat("a", 50), true},
		{"fifty one chars", strings.Repeat("a", 51), false},
		{"fifty chars padded", " " + strings.Repeat("a", 50) + " ", true},
		{"multibyte counts runes", "čšř", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ValidateTitle(tt.title))
		})
	}
}

func TestValidateDescription(t *testing.T) {
	t.Parallel()

	assert.False(t, ValidateDescription(""))
	assert.False(t, ValidateDescription("   "))
	assert.True(t, ValidateDescription("x"))
	assert.True(t, ValidateDescription(strings.Repeat("x", 2000)))
	assert.False(t, ValidateDescription(strings.Repeat("x", 2001)))
	// The upper bound applies to the raw text, padding included.
	assert.False(t, ValidateDescription(" "+strings.Repeat("x", 2000)))
}

func TestValidateImageCount(t *testing.T) {
	t.Parallel()

	assert.False(t, ValidateImageCount(0))
	assert.True(t, ValidateImageCount(1))
	assert.True(t, ValidateImageCount(20))
	assert.False(t, ValidateImageCount(21))
}

func TestValidateFromDate(t *testing.T) {
	t.Parallel()

	assert.False(t, ValidateFromDate(nil, testNow))
	assert.False(t, ValidateFromDate(at(0), testNow))
	assert.False(t, ValidateFromDate(at(-time.Minute), testNow))
	assert.True(t, ValidateFromDate(at(time.Second), testNow))
}

func TestValidateToDate(t *testing.T) {
	t.Parallel()

	assert.False(t, ValidateToDate(nil, nil))
	assert.False(t, ValidateToDate(at(time.Hour), nil))
	assert.False(t, ValidateToDate(nil, at(time.Hour)))
	assert.False(t, ValidateToDate(at(time.Hour), at(time.Hour)))
	assert.False(t, ValidateToDate(at(time.Hour), at(2*time.Hour)))
	assert.True(t, ValidateToDate(at(2*time.Hour), at(time.Hour)))
}

func TestValidatePlace(t *testing.T) {
	t.Parallel()

	assert.False(t, ValidatePlace("ab"))
	assert.True(t, ValidatePlace("Ústí"))
	assert.True(t, ValidatePlace(strings.Repeat("p", 20)))
	assert.False(t, ValidatePlace(strings.Repeat("p", 21)))
	assert.False(t, ValidatePlace("   ab   "))
}

// ============================================================================
// Aggregate Validation Tests
// ============================================================================

func TestValidate_ValidDraft(t *testing.T) {
	t.Parallel()

	errs := Validate(validDraft(), testNow)
	assert.True(t, errs.Valid())
	assert.Len(t, errs, len(ValidatedFields))
	assert.Empty(t, errs.Messages())
}

func TestValidate_ZeroImagesAlwaysInvalid(t *testing.T) {
	t.Parallel()

	d := validDraft()
	d.Images = nil

	errs := Validate(d, testNow)
	assert.False(t, errs.Valid())
	assert.NotEmpty(t, errs[FieldImages])
	for _, f := range ValidatedFields {
		if f != FieldImages {
			assert.Empty(t, errs[f], "field %s", f)
		}
	}
}

func TestValidate_BlankDraftReportsEveryField(t *testing.T) {
	t.Parallel()

	errs := Validate(NewDraft("u1"), testNow)
	assert.False(t, errs.Valid())
	assert.Len(t, errs.Messages(), len(ValidatedFields))
}

func TestValidate_PrivateWithoutGroupIsAccepted(t *testing.T) {
	t.Parallel()

	d := validDraft()
	d.IsPrivate = true
	d.Group = nil

	assert.True(t, Validate(d, testNow).Valid())
}
