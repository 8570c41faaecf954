package plan

import "fmt"

// MalformedDocumentError reports a plan document that could not be loaded:
// unparseable KML, no NOMINAL layer, or no record surviving validation.
type MalformedDocumentError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed plan document %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed plan document %s: %s", e.Path, e.Reason)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }
