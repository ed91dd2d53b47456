package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If given error implements unpacker interface, it is flattened. All errors
// that it contains are directly included into the result set. This means
// that no nesting of multi error instances is possible.
func Append(errs ...error) error {
	var res multiError
	for _, e := range errs {
		switch e := e.(type) {
		case nil:
			continue
		case unpacker:
			for _, u := range e.Unpack() {
				if !isNilErr(u) {
					res = append(res, u)
				}
			}
		default:
			if !isNilErr(e) {
				res = append(res, e)
			}
		}
	}

	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

type multiError []error

var _ unpacker = (multiError)(nil)

func (errs multiError) Unpack() []error {
	return errs
}

func (errs multiError) Error() string {
	switch len(errs) {
	case 0:
		return "<nil>"
	case 1:
		return errs[0].Error()
	}
	points := make([]string, len(errs))
	for i, err := range errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s",
		len(errs), strings.Join(points, "\n\t"))
}

type unpacker interface {
	// Unpack returns all errors contained by this error instance.
	Unpack() []error
}
