package world

import "fmt"

// ErrorTag classifies recoverable runtime errors. No error crosses the
// tick boundary as a panic; callers inspect the tag and decide whether
// to surface a message.
type ErrorTag string

const (
	// TagContentMissing marks content resolved through a fallback.
	TagContentMissing ErrorTag = "content_missing"
	// TagContentMalformed marks content partially skipped during load.
	TagContentMalformed ErrorTag = "content_malformed"
	// TagInvalidTransition marks a rejected state change; state is
	// unchanged when this is reported.
	TagInvalidTransition ErrorTag = "invalid_transition"
)

// Error is a tagged recoverable error.
type Error struct {
	Tag ErrorTag
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Tag, e.Msg)
}

func invalidTransition(format string, args ...any) *Error {
	return &Error{Tag: TagInvalidTransition, Msg: fmt.Sprintf(format, args...)}
}
