package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// CurrentSchemaVersion is the envelope version written by [Encode].
const CurrentSchemaVersion = 1

const legacySchemaVersion = 0

var (
	// ErrUnsupportedSchema is returned by [Decode] for envelopes written by a
	// newer or unknown schema.
	ErrUnsupportedSchema = errors.New("unsupported session schema version")
	// ErrPartialRecord is returned by [Decode] when only one of admin and
	// token is present.
	ErrPartialRecord = errors.New("partial session record")
	// ErrEmptyPayload is returned by [Decode] for zero-length input.
	ErrEmptyPayload = errors.New("empty session payload")
	// ErrCorruptRecord wraps JSON syntax and type errors from [Decode].
	ErrCorruptRecord = errors.New("corrupt session record")
)

// Unusable reports whether err came from [Decode] rejecting stored bytes, as
// opposed to an I/O failure while reading them.
func Unusable(err error) bool {
	return errors.Is(err, ErrUnsupportedSchema) ||
		errors.Is(err, ErrPartialRecord) ||
		errors.Is(err, ErrEmptyPayload) ||
		errors.Is(err, ErrCorruptRecord)
}

type envelope struct {
	Version int     `json:"v"`
	Admin   *Admin  `json:"admin"`
	Token   *string `json:"token"`
}

// Encode serializes r into the current envelope. Partial records are refused
// so that a half-formed session can never reach storage.
func Encode(r Record) ([]byte, error) {
	if !r.Valid() {
		return nil, ErrPartialRecord
	}

	env := envelope{Version: CurrentSchemaVersion}
	if r.Complete() {
		token := r.Token
		env.Admin = r.Admin.Clone()
		env.Token = &token
	}

	return json.Marshal(env)
}

// Decode parses an envelope produced by [Encode] or by the unversioned legacy
// writer.
func Decode(data []byte) (Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Record{}, ErrEmptyPayload
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	switch env.Version {
	case CurrentSchemaVersion, legacySchemaVersion:
	default:
		return Record{}, fmt.Errorf("%w: %d", ErrUnsupportedSchema, env.Version)
	}

	r := Record{Admin: env.Admin}
	if env.Token != nil {
		r.Token = *env.Token
	}
	if !r.Valid() {
		return Record{}, ErrPartialRecord
	}

	return r, nil
}
