package balance

import (
	"bytes"
	"strconv"
)

// Amount is an optional wallet balance. The zero value is an unknown balance,
// i.e. one that has not been fetched from upstream yet.
type Amount struct {
	Value int64
	Known bool
}

// Unknown is the absent balance.
var Unknown = Amount{}

// Of returns a known amount.
func Of(v int64) Amount {
	return Amount{Value: v, Known: true}
}

// FromPtr converts a nullable integer into an Amount.
func FromPtr(v *int64) Amount {
	if v == nil {
		return Unknown
	}
	return Of(*v)
}

// Get returns the value and whether it is known.
func (a Amount) Get() (int64, bool) {
	return a.Value, a.Known
}

// Ptr returns nil for an unknown amount. Handy for JSON payloads.
func (a Amount) Ptr() *int64 {
	if !a.Known {
		return nil
	}
	v := a.Value
	return &v
}

func (a Amount) String() string {
	if !a.Known {
		return "unknown"
	}
	return strconv.FormatInt(a.Value, 10)
}

// MarshalJSON encodes an unknown amount as null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Known {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, a.Value, 10), nil
}

// UnmarshalJSON accepts null or an integer.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = Unknown
		return nil
	}
	v, err := strconv.ParseInt(string(bytes.TrimSpace(data)), 10, 64)
	if err != nil {
		return err
	}
	*a = Of(v)
	return nil
}
