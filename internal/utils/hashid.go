package utils

import (
	"errors"

	hashids "github.com/speps/go-hashids"
)

// ErrInvalidID means the public identifier could not be decoded. Decoding a
// well-formed but unknown ID succeeds here and fails later with a not-found,
// so the two cases stay distinguishable.
var ErrInvalidID = errors.New("invalid public id")

// IDCodec obfuscates internal numeric IDs for external exposure. It is a
// keyed reversible transform, not a security boundary.
type IDCodec struct {
	h *hashids.HashID
}

func NewIDCodec(salt string) (*IDCodec, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 8
	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, err
	}
	return &IDCodec{h: h}, nil
}

// Encode turns an internal ID into its opaque public form.
func (c *IDCodec) Encode(id uint) (string, error) {
	return c.h.EncodeInt64([]int64{int64(id)})
}

// Decode reverses Encode. Malformed or foreign-salt input fails with
// ErrInvalidID and never panics.
func (c *IDCodec) Decode(public string) (uint, error) {
	ids, err := c.h.DecodeInt64WithError(public)
	if err != nil || len(ids) != 1 || ids[0] < 0 {
		return 0, ErrInvalidID
	}
	return uint(ids[0]), nil
}
