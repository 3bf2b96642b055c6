package domain

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
)

// AccountID identifies an account. The zero value is not a valid ID.
type AccountID struct {
	uuid uuid.UUID
}

// NewAccountID generates a random account ID.
func NewAccountID() AccountID {
	return AccountID{uuid: uuid.New()}
}

// AccountIDFromUUID wraps an existing UUID.
func AccountIDFromUUID(u uuid.UUID) AccountID {
	return AccountID{uuid: u}
}

// ParseAccountID parses the canonical string form.
func ParseAccountID(s string) (AccountID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return AccountID{}, fmt.Errorf("%w: %v", ErrInvalidAccountID, err)
	}
	return AccountID{uuid: u}, nil
}

// MustParseAccountID is like ParseAccountID but panics on error.
func MustParseAccountID(s string) AccountID {
	id, err := ParseAccountID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// UUID returns the underlying value.
func (id AccountID) UUID() uuid.UUID {
	return id.uuid
}

// IsZero reports whether the ID was never assigned.
func (id AccountID) IsZero() bool {
	return id.uuid == uuid.Nil
}

// Compare orders IDs by their bytes.
func (id AccountID) Compare(other AccountID) int {
	return bytes.Compare(id.uuid[:], other.uuid[:])
}

func (id AccountID) String() string {
	return id.uuid.String()
}

// MarshalText implements encoding.TextMarshaler.
func (id AccountID) MarshalText() ([]byte, error) {
	return id.uuid.MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *AccountID) UnmarshalText(data []byte) error {
	parsed, err := ParseAccountID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
