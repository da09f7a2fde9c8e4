package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// bin does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. a non-positive record id, an unknown budget category).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrStorageUnavailable is returned by the local store when the underlying
// key/value storage cannot be read or written (disk full, locked database).
// Callers log it and keep the in-memory document as the source of truth.
var ErrStorageUnavailable = errors.New("local storage unavailable")

// ErrDeserialization marks a locally stored payload that cannot be decoded.
// The local store absorbs it and reports the document as absent.
var ErrDeserialization = errors.New("corrupt stored document")

// ErrRemoteUnavailable is returned by the remote client for transport
// failures, rate-limit waits that cannot complete, and non-success statuses.
var ErrRemoteUnavailable = errors.New("remote store unavailable")

// ErrRemoteNotFound is returned by the remote client when the share id is
// unknown to the remote store (HTTP 404).
var ErrRemoteNotFound = errors.New("shared trip not found")
