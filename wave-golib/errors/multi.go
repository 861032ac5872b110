package errors

import "strings"

// Errors is a non-empty list of errors. A nil Errors means no error occurred,
// so the usual err != nil check keeps working.
type Errors interface {
	error
	// Slice returns a copy of the underlying errors.
	Slice() []error
	// Len is always > 0.
	Len() int

	list() []error
}

type errorList []error

func (l errorList) list() []error { return l }

func (l errorList) Slice() []error { return append([]error(nil), l...) }

func (l errorList) Len() int { return len(l) }

func (l errorList) Error() string {
	msgs := make([]string, 0, len(l))
	for _, err := range l {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// Append adds err (which may itself be an Errors) to errs. Nil errors are
// dropped; the backing array of errs is never shared with the result.
func Append(errs Errors, err error) Errors {
	if err == nil {
		return errs
	}
	var out errorList
	if errs != nil {
		out = append(out, errs.list()...)
	}
	if multi, ok := err.(Errors); ok {
		return append(out, multi.list()...)
	}
	return append(out, err)
}

// Combine merges e and f into a single error, returning nil only if both
// are nil and the lone non-nil error if only one is set.
func Combine(e, f error) error {
	switch {
	case e == nil:
		return f
	case f == nil:
		return e
	}
	var errs Errors
	errs = Append(errs, e)
	return Append(errs, f)
}

// Defer folds the result of f into *err; use it to keep Close errors from
// deferred calls.
//
//	defer errors.Defer(&err, f.Close)
func Defer(err *error, f func() error) {
	*err = Combine(*err, f())
}
