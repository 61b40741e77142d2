// Package formatting holds human-readable value types used in configuration.
package formatting

import (
	"fmt"
	"strings"

	"github.com/docker/go-units"
)

// ByteSize is a byte count written in config as a binary size such as
// "1MB", "512 KiB", or a bare number of bytes.
type ByteSize int64

// ParseByteSize reads s using base-1024 units. Units are case-insensitive.
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	n, err := units.RAMInBytes(s)
	switch {
	case err != nil:
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	case n < 0:
		return 0, fmt.Errorf("invalid byte size %q: must not be negative", s)
	}
	return ByteSize(n), nil
}

// String renders b in base-1024 units, e.g. "1.5MiB".
func (b ByteSize) String() string {
	return units.BytesSize(float64(b))
}

func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = n
	return nil
}
