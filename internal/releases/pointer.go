package releases

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	pointerHashFieldNameConstant            = "hash"
	pointerLabelFieldNameConstant           = "label"
	pointerFieldEmptyMessageConstant        = "must not be empty"
	pointerHashMalformedMessageConstant     = "must be a 40-character hexadecimal commit identifier"
	invalidReleasePointerTemplateConstant   = "release pointer %s %s"
	wholeWordBoundaryPrefixPatternConstant  = `(^|[^0-9A-Za-z_])`
	wholeWordBoundarySuffixPatternConstant  = `($|[^0-9A-Za-z_])`
	commitHashPatternStringConstant         = `^[0-9a-f]{40}$`
)

var commitHashPattern = regexp.MustCompile(commitHashPatternStringConstant)

// ReleasePointer identifies a cherry-pick boundary in commit history.
type ReleasePointer struct {
	Hash  string
	Label string
}

// InvalidReleasePointerError indicates a pointer that cannot bound a cherry-pick range.
type InvalidReleasePointerError struct {
	FieldName string
	Message   string
}

// Error describes the validation failure.
func (pointerError InvalidReleasePointerError) Error() string {
	return fmt.Sprintf(invalidReleasePointerTemplateConstant, pointerError.FieldName, pointerError.Message)
}

// Validate rejects pointers with an empty or malformed hash or an empty label.
// Resolution leaves fields empty instead of failing, so callers must validate
// before using a pointer as a cherry-pick boundary.
func (pointer ReleasePointer) Validate() error {
	trimmedHash := strings.TrimSpace(pointer.Hash)
	if len(trimmedHash) == 0 {
		return InvalidReleasePointerError{FieldName: pointerHashFieldNameConstant, Message: pointerFieldEmptyMessageConstant}
	}
	if !commitHashPattern.MatchString(trimmedHash) {
		return InvalidReleasePointerError{FieldName: pointerHashFieldNameConstant, Message: pointerHashMalformedMessageConstant}
	}
	if len(strings.TrimSpace(pointer.Label)) == 0 {
		return InvalidReleasePointerError{FieldName: pointerLabelFieldNameConstant, Message: pointerFieldEmptyMessageConstant}
	}
	return nil
}

// SubjectContainsWholeWord reports whether the search term appears in the
// subject as a whole word. Terms may contain punctuation, so boundaries are
// checked explicitly instead of relying on \b.
func SubjectContainsWholeWord(subject string, searchTerm string) bool {
	trimmedTerm := strings.TrimSpace(searchTerm)
	if len(trimmedTerm) == 0 {
		return false
	}
	wholeWordPattern, compileError := regexp.Compile(
		wholeWordBoundaryPrefixPatternConstant + regexp.QuoteMeta(trimmedTerm) + wholeWordBoundarySuffixPatternConstant,
	)
	if compileError != nil {
		return false
	}
	return wholeWordPattern.MatchString(subject)
}
