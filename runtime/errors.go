package s2proto

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrUnexpectedEnd is returned when the input runs out of bytes or bits
	// before a value is complete. Errors carrying context still match it
	// through errors.Is.
	ErrUnexpectedEnd error = UnexpectedEndError{}

	// ErrRecursion is returned when a nesting depth limit is reached.
	ErrRecursion error = errRecursion{}

	// ErrVLQOverflow is returned when a varint's magnitude passes 64 bits
	// before its final byte. Errors carrying context still match it.
	ErrVLQOverflow error = VLQOverflowError{}

	// ErrBitWidth is returned when a read asks for more bits than fit a uint64.
	ErrBitWidth error = errors.New("s2proto: bit width out of range")
)

// Error is implemented by every error this package returns.
type Error interface {
	error

	// Resumable reports whether the value that failed was consumed in full,
	// so a caller may skip it and keep decoding the rest of the buffer.
	// Tag and length damage leaves the cursor position meaningless and is
	// never resumable.
	Resumable() bool
}

// contextError is an Error that can carry a decode path. withContext
// returns a copy; the receiver is left untouched.
type contextError interface {
	Error
	withContext(ctx string) error
}

// Cause strips the context added by WrapError from a foreign error.
func Cause(e error) error {
	if w, ok := e.(errWrapped); ok && w.cause != nil {
		return w.cause
	}
	return e
}

// Resumable reports whether e leaves the surrounding stream decodable.
// Errors from outside this package are treated as fatal.
func Resumable(e error) bool {
	var se Error
	if errors.As(e, &se) {
		return se.Resumable()
	}
	return false
}

// WrapError prefixes err's decode path with ctx, typically a field name,
// event index or variant name. Paths read outermost first:
// "m_header/m_version/m_build". Parts may be strings, ints or errors.
func WrapError(err error, ctx ...any) error {
	if err == nil {
		return nil
	}
	path := joinPath(ctx)
	if ce, ok := err.(contextError); ok {
		return ce.withContext(path)
	}
	return errWrapped{cause: err, ctx: path}
}

func joinPath(parts []any) string {
	var sb strings.Builder
	for i, p := range parts {
		if i > 0 {
			sb.WriteByte('/')
		}
		switch v := p.(type) {
		case string:
			sb.WriteString(v)
		case int:
			sb.WriteString(strconv.Itoa(v))
		case int64:
			sb.WriteString(strconv.FormatInt(v, 10))
		case error:
			sb.WriteString(v.Error())
		default:
			sb.WriteByte('?')
		}
	}
	return sb.String()
}

// prepend puts an outer path segment in front of an existing path.
func prepend(path, outer string) string {
	if path == "" {
		return outer
	}
	return outer + "/" + path
}

// located appends " at path" to msg when a path is known.
func located(msg, path string) string {
	if path == "" {
		return msg
	}
	return msg + " at " + path
}

// errWrapped carries a decode path for errors that do not implement
// contextError themselves, such as errors returned by callbacks.
type errWrapped struct {
	cause error
	ctx   string
}

func (e errWrapped) Error() string   { return located(e.cause.Error(), e.ctx) }
func (e errWrapped) Resumable() bool { return Resumable(e.cause) }
func (e errWrapped) Unwrap() error   { return e.cause }

func (e errWrapped) withContext(ctx string) error {
	e.ctx = prepend(e.ctx, ctx)
	return e
}

type errRecursion struct{}

func (errRecursion) Error() string   { return "s2proto: recursion limit reached" }
func (errRecursion) Resumable() bool { return false }

// UnexpectedEndError is returned when fewer bytes or bits remain than a read
// requires. Need and Have are in bits for bit-packed reads and in bytes for
// byte-aligned reads; both are zero when unknown.
type UnexpectedEndError struct {
	Need int
	Have int
	ctx  string
}

func (e UnexpectedEndError) Error() string {
	msg := "s2proto: unexpected end of input"
	if e.Need > 0 {
		msg += " (need " + strconv.Itoa(e.Need) + ", have " + strconv.Itoa(e.Have) + ")"
	}
	return located(msg, e.ctx)
}

// Is reports any UnexpectedEndError as ErrUnexpectedEnd.
func (e UnexpectedEndError) Is(target error) bool {
	_, ok := target.(UnexpectedEndError)
	return ok
}

func (UnexpectedEndError) Resumable() bool { return false }

func (e UnexpectedEndError) withContext(ctx string) error {
	e.ctx = prepend(e.ctx, ctx)
	return e
}

func errShort(need, have int) error { return UnexpectedEndError{Need: need, Have: have} }

// UnknownTagError is returned when the wire presents a struct field tag or a
// choice variant selector the schema does not declare.
type UnknownTagError struct {
	Tag int64
	ctx string
}

func (e UnknownTagError) Error() string {
	return located("s2proto: unknown tag "+strconv.FormatInt(e.Tag, 10), e.ctx)
}

func (UnknownTagError) Resumable() bool { return false }

func (e UnknownTagError) withContext(ctx string) error {
	e.ctx = prepend(e.ctx, ctx)
	return e
}

// DuplicateTagError is returned when a struct field tag appears more than
// once in a single struct instance.
type DuplicateTagError struct {
	Field string
	Tag   int64
	ctx   string
}

func (e DuplicateTagError) Error() string {
	msg := "s2proto: duplicate field " + strconv.Quote(e.Field) + " (tag " + strconv.FormatInt(e.Tag, 10) + ")"
	return located(msg, e.ctx)
}

func (DuplicateTagError) Resumable() bool { return false }

func (e DuplicateTagError) withContext(ctx string) error {
	e.ctx = prepend(e.ctx, ctx)
	return e
}

// MissingFieldError is returned when a required struct field never appeared
// on the wire. The struct itself was consumed in full.
type MissingFieldError struct {
	Field string
	ctx   string
}

func (e MissingFieldError) Error() string {
	return located("s2proto: missing required field "+strconv.Quote(e.Field), e.ctx)
}

func (MissingFieldError) Resumable() bool { return true }

func (e MissingFieldError) withContext(ctx string) error {
	e.ctx = prepend(e.ctx, ctx)
	return e
}

// IntOverflow is returned when a decoded 64-bit intermediate does not fit
// the declared width of its target. The wire value was consumed in full.
type IntOverflow struct {
	Value         int64 // the decoded value
	FailedBitsize int   // width of the target type
	Signed        bool
	ctx           string
}

func (e IntOverflow) Error() string {
	kind := "uint"
	if e.Signed {
		kind = "int"
	}
	msg := "s2proto: " + strconv.FormatInt(e.Value, 10) + " overflows " + kind + strconv.Itoa(e.FailedBitsize)
	return located(msg, e.ctx)
}

func (IntOverflow) Resumable() bool { return true }

func (e IntOverflow) withContext(ctx string) error {
	e.ctx = prepend(e.ctx, ctx)
	return e
}

// VLQOverflowError is returned when a varint carries more magnitude than 64
// bits hold. Its remaining continuation bytes are left unread, so the
// stream position is lost.
type VLQOverflowError struct {
	ctx string
}

func (e VLQOverflowError) Error() string {
	return located("s2proto: varint overflows 64 bits", e.ctx)
}

// Is reports any VLQOverflowError as ErrVLQOverflow.
func (e VLQOverflowError) Is(target error) bool {
	_, ok := target.(VLQOverflowError)
	return ok
}

func (VLQOverflowError) Resumable() bool { return false }

func (e VLQOverflowError) withContext(ctx string) error {
	e.ctx = prepend(e.ctx, ctx)
	return e
}

// MalformedTagError is returned when a byte-aligned type tag does not match
// the shape the schema expects.
type MalformedTagError struct {
	Want TypeTag
	Got  byte
	ctx  string
}

func (e MalformedTagError) Error() string {
	msg := "s2proto: expected " + e.Want.String() + " tag (" + strconv.Itoa(int(e.Want)) + ") but got " + strconv.Itoa(int(e.Got))
	return located(msg, e.ctx)
}

func (MalformedTagError) Resumable() bool { return false }

func (e MalformedTagError) withContext(ctx string) error {
	e.ctx = prepend(e.ctx, ctx)
	return e
}

// InvalidTagError is returned when a byte-aligned value starts with a byte
// that is not a type tag at all, so no shape can be read from it.
type InvalidTagError struct {
	Got byte
	ctx string
}

func (e InvalidTagError) Error() string {
	return located("s2proto: invalid type tag "+strconv.Itoa(int(e.Got)), e.ctx)
}

func (InvalidTagError) Resumable() bool { return false }

func (e InvalidTagError) withContext(ctx string) error {
	e.ctx = prepend(e.ctx, ctx)
	return e
}
