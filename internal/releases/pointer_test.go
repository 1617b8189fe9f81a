package releases_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/websync/internal/releases"
)

const validCommitHashConstant = "0123456789abcdef0123456789abcdef01234567"

func TestReleasePointerValidate(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		pointer              releases.ReleasePointer
		expectedErrorMessage string
	}{
		{
			name:    "valid_pointer",
			pointer: releases.ReleasePointer{Hash: validCommitHashConstant, Label: "release 3.12.24"},
		},
		{
			name:                 "empty_hash",
			pointer:              releases.ReleasePointer{Hash: "   ", Label: "release 3.12.24"},
			expectedErrorMessage: "release pointer hash must not be empty",
		},
		{
			name:                 "short_hash",
			pointer:              releases.ReleasePointer{Hash: "abc123", Label: "release 3.12.24"},
			expectedErrorMessage: "release pointer hash must be a 40-character hexadecimal commit identifier",
		},
		{
			name:                 "uppercase_hash",
			pointer:              releases.ReleasePointer{Hash: "0123456789ABCDEF0123456789ABCDEF01234567", Label: "release 3.12.24"},
			expectedErrorMessage: "release pointer hash must be a 40-character hexadecimal commit identifier",
		},
		{
			name:                 "empty_label",
			pointer:              releases.ReleasePointer{Hash: validCommitHashConstant, Label: "  "},
			expectedErrorMessage: "release pointer label must not be empty",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			validationError := testCase.pointer.Validate()
			if len(testCase.expectedErrorMessage) == 0 {
				require.NoError(subtestInstance, validationError)
				return
			}
			require.Error(subtestInstance, validationError)
			require.Equal(subtestInstance, testCase.expectedErrorMessage, validationError.Error())
		})
	}
}

func TestSubjectContainsWholeWord(testInstance *testing.T) {
	testCases := []struct {
		name          string
		subject       string
		searchTerm    string
		expectedMatch bool
	}{
		{
			name:          "term_at_subject_start",
			subject:       "3.12.24 deployed to production",
			searchTerm:    "3.12.24",
			expectedMatch: true,
		},
		{
			name:          "term_surrounded_by_punctuation",
			subject:       "release (3.12.24): hotfix",
			searchTerm:    "3.12.24",
			expectedMatch: true,
		},
		{
			name:          "term_embedded_in_longer_version",
			subject:       "release 3.12.245 deployed",
			searchTerm:    "3.12.24",
			expectedMatch: false,
		},
		{
			name:          "term_prefixed_by_word_character",
			subject:       "prerelease v3.12.24x",
			searchTerm:    "3.12.24",
			expectedMatch: false,
		},
		{
			name:          "full_subject_as_term",
			subject:       "Merge pull request #42 from feature/login",
			searchTerm:    "Merge pull request #42 from feature/login",
			expectedMatch: true,
		},
		{
			name:          "empty_term_never_matches",
			subject:       "release 3.12.24",
			searchTerm:    "   ",
			expectedMatch: false,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			require.Equal(
				subtestInstance,
				testCase.expectedMatch,
				releases.SubjectContainsWholeWord(testCase.subject, testCase.searchTerm),
			)
		})
	}
}
