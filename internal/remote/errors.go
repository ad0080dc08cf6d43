package remote

import (
	"errors"
	"fmt"
)

// ErrStaleVersion is returned when a conditional write is rejected because
// the remote document changed since it was read.
var ErrStaleVersion = errors.New("remote document changed since it was read")

// NetworkError covers transport failures and non-OK responses.
type NetworkError struct {
	Op     string
	URL    string
	Status int // 0 when the request never got a response
	Msg    string
	Err    error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	case e.Status != 0 && e.Msg != "":
		return fmt.Sprintf("%s %s: status %d: %s", e.Op, e.URL, e.Status, e.Msg)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.Status)
	default:
		return fmt.Sprintf("%s %s: %s", e.Op, e.URL, e.Msg)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports a response body that could not be decoded.
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Status == 404
}
