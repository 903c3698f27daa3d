// Package token turns access credentials into identities.
//
// The session manager only depends on the Decoder interface; JWTDecoder
// is the production implementation for the simplejwt tokens issued by
// the campaign API.
package token

import (
	"errors"
	"fmt"

	"github.com/westmarch-io/westmarch/internal/models"
)

// ErrUndecodable is matched by every error returned from a Decoder.
var ErrUndecodable = errors.New("credential is not decodable")

// Decoder decodes an access credential into an Identity.
type Decoder interface {
	Decode(credential string) (*models.Identity, error)
}

// DecoderFunc adapts a plain function to the Decoder interface.
type DecoderFunc func(credential string) (*models.Identity, error)

func (f DecoderFunc) Decode(credential string) (*models.Identity, error) {
	return f(credential)
}

// DecodeError describes why a credential was rejected.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode credential: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode credential: %s", e.Reason)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUndecodable, e.Err}
	}
	return []error{ErrUndecodable}
}

func newDecodeError(reason string, err error) error {
	return &DecodeError{Reason: reason, Err: err}
}
