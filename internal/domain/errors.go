package domain

import "errors"

var (
	// ErrNotFound signals a missing entity, category or document.
	// Restricted documents map to the same error so existence is not leaked.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a malformed client request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidCatalog signals a catalog definition that breaks registry invariants.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrRepositoryUnavailable signals a failed call to the document repository.
	ErrRepositoryUnavailable = errors.New("document repository unavailable")
	// ErrDocumentUnavailable signals that the stored object could not be fetched.
	ErrDocumentUnavailable = errors.New("document unavailable")
)
