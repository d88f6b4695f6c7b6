// Package id defines TypeID-based identifiers for digigate records.
//
// Subscriptions, recorded downloads and support chat messages each carry an
// ID whose prefix names the record kind ("sub", "dl", "msg"). IDs are
// UUIDv7-based, so they sort by creation time, and render as "prefix_suffix".
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the record kind encoded in a TypeID.
type Prefix string

const (
	PrefixSubscription Prefix = "sub"
	PrefixDownload     Prefix = "dl"
	PrefixMessage      Prefix = "msg"
)

// ID wraps a TypeID. The zero value is Nil and encodes as an empty string.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receiver for UnmarshalText.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates an ID with the given prefix. It panics on an invalid
// prefix, which is a programming error.
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}
	return ID{inner: tid, valid: true}
}

// Parse parses "prefix_suffix" into an ID.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}
	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses s and checks that it carries the expected prefix.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}
	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}
	return parsed, nil
}

type (
	SubscriptionID = ID
	DownloadID     = ID
	MessageID      = ID
)

func NewSubscriptionID() SubscriptionID { return New(PrefixSubscription) }
func NewDownloadID() DownloadID         { return New(PrefixDownload) }
func NewMessageID() MessageID           { return New(PrefixMessage) }

func ParseSubscriptionID(s string) (SubscriptionID, error) {
	return ParseWithPrefix(s, PrefixSubscription)
}

func ParseDownloadID(s string) (DownloadID, error) {
	return ParseWithPrefix(s, PrefixDownload)
}

func ParseMessageID(s string) (MessageID, error) {
	return ParseWithPrefix(s, PrefixMessage)
}

// String returns "prefix_suffix", or "" for Nil.
func (i ID) String() string {
	if !i.valid {
		return ""
	}
	return i.inner.String()
}

func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}
	return Prefix(i.inner.Prefix())
}

func (i ID) IsNil() bool { return !i.valid }

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields Nil.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
