// Package apperrors implements the application error chain used across the
// server. Errors carry an HTTP status code, wrap any number of causes, and
// compose by deriving new errors from existing ones, so packages can declare
// a small error tree and refine instances at the call site.
package apperrors

// Error is the application error interface. It extends the standard error
// interface with derivation, cause attachment, and status code management.
// Methods never mutate the receiver; each returns a derived Error so call
// sites can chain.
type Error interface {
	error
	Unwrap() error // errors.Is / errors.As support

	New(msg string) Error                  // fresh error with the receiver as template
	Msg(msg string) Error                  // new message, receiver wrapped as cause
	MsgErr(msg string, err ...error) Error // new message, receiver plus extra causes
	Err(err ...error) Error                // receiver's message, extra causes attached
	SetExpandError(bool) Error             // include causes in ErrorAll output
	SetStatusCode(int) Error               // attach an HTTP status code
	StatusCode() int                       // current status code, 0 when unset
	Prefix(string) Error                   // prepend to the message
	Suffix(string) Error                   // append to the message
	ErrorAll() string                      // message plus causes when expansion is on
	UnwrapAll() []error                    // every attached cause
}
