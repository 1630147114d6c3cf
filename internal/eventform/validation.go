package eventform

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Field names a draft field. The values double as the record store's field
// keys.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldImages      Field = "image"
	FieldWindowStart Field = "from_date"
	FieldWindowEnd   Field = "to_date"
	FieldPlace       Field = "place"
	FieldOwner       Field = "owner"
	FieldLocation    Field = "location"
	FieldPrivate     Field = "isPrivate"
	FieldGroup       Field = "group"
)

// ValidatedFields lists the fields ValidationErrors always reports on, in
// display order.
var ValidatedFields = []Field{
	FieldTitle,
	FieldDescription,
	FieldImages,
	FieldWindowStart,
	FieldWindowEnd,
	FieldPlace,
}

const (
	TitleMinLen       = 3
	TitleMaxLen       = 50
	DescriptionMaxLen = 2000
	MinImages         = 1
	MaxImages         = 20
	PlaceMinLen       = 3
	PlaceMaxLen       = 20
)

const (
	msgTitle       = "Title must be 3-50 characters."
	msgDescription = "Description must be 1-2000 characters."
	msgImages      = "Select at least one image (max 20)."
	msgWindowStart = "The event must start in the future."
	msgWindowEnd   = "The event must end after it starts."
	msgPlace       = "Place must be 3-20 characters."
)

// ValidationErrors maps each validated field to a message, or "" when the
// field is fine.
type ValidationErrors map[Field]string

// Valid reports whether no field has a message.
func (v ValidationErrors) Valid() bool {
	for _, msg := range v {
		if msg != "" {
			return false
		}
	}
	return true
}

// Messages returns the non-empty messages in display order.
func (v ValidationErrors) Messages() []string {
	var out []string
	for _, f := range ValidatedFields {
		if msg := v[f]; msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// ValidateTitle requires 3 to 50 characters after trimming.
func ValidateTitle(title string) bool {
	n := runeLen(strings.TrimSpace(title))
	return n >= TitleMinLen && n <= TitleMaxLen
}

// ValidateDescription requires a non-blank description of at most 2000
// characters.
func ValidateDescription(description string) bool {
	return strings.TrimSpace(description) != "" && runeLen(description) <= DescriptionMaxLen
}

// ValidateImageCount requires between 1 and 20 images.
func ValidateImageCount(n int) bool {
	return n >= MinImages && n <= MaxImages
}

// ValidateFromDate requires a start strictly after now.
func ValidateFromDate(from *time.Time, now time.Time) bool {
	return from != nil && from.After(now)
}

// ValidateToDate requires both ends and an end strictly after the start.
func ValidateToDate(to, from *time.Time) bool {
	return to != nil && from != nil && to.After(*from)
}

// ValidatePlace requires 3 to 20 characters after trimming.
func ValidatePlace(place string) bool {
	n := runeLen(strings.TrimSpace(place))
	return n >= PlaceMinLen && n <= PlaceMaxLen
}

// Validate checks every validated field of d against now.
func Validate(d *Draft, now time.Time) ValidationErrors {
	errs := make(ValidationErrors, len(ValidatedFields))
	errs[FieldTitle] = message(ValidateTitle(d.Title), msgTitle)
	errs[FieldDescription] = message(ValidateDescription(d.Description), msgDescription)
	errs[FieldImages] = message(ValidateImageCount(len(d.Images)), msgImages)
	errs[FieldWindowStart] = message(ValidateFromDate(d.WindowStart, now), msgWindowStart)
	errs[FieldWindowEnd] = message(ValidateToDate(d.WindowEnd, d.WindowStart), msgWindowEnd)
	errs[FieldPlace] = message(ValidatePlace(d.Place), msgPlace)
	return errs
}

func message(ok bool, msg string) string {
	if ok {
		return ""
	}
	return msg
}
