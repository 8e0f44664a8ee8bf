package wizard

import "errors"

var (
	// ErrMissingState indicates the generation page was reached without a completed selection.
	ErrMissingState = errors.New("session data is missing, please go back to the selection page")

	// ErrEmptyDirectory indicates there are no candidates to select from.
	ErrEmptyDirectory = errors.New("no candidates available")

	// ErrUnknownCandidate indicates the selected candidate is not in the directory.
	ErrUnknownCandidate = errors.New("unknown candidate")

	// ErrIncompleteCandidate indicates the chosen candidate's row lacks an email or position.
	ErrIncompleteCandidate = errors.New("candidate record is incomplete, please fill in the Email and Position cells in the Excel file")

	// ErrUnknownInterviewer indicates the selected interviewer is not offered.
	ErrUnknownInterviewer = errors.New("unknown interviewer")

	// ErrNotOnSelection indicates a selection was submitted outside the selection page.
	ErrNotOnSelection = errors.New("selection can only be made on the selection page")

	// ErrNothingComposed indicates an edit or send was attempted before generating an email.
	ErrNothingComposed = errors.New("please generate the email first")

	// ErrNotEditing indicates the body was changed while the email is in preview mode.
	ErrNotEditing = errors.New("email is not in edit mode")
)
