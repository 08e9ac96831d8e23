// Package errs provides the error taxonomy shared by the kiosk order service.
//
// Every kind follows the same shape:
//   - A sentinel error variable (e.g., ErrObjectNotFound)
//   - A struct type carrying the details
//   - Constructor functions with and without cause
//   - Error() for formatting and Unwrap() so errors.Is matches the sentinel
//
// Kinds and how callers should treat them:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: bad input, never retried
//   - ObjectNotFoundError: missing order or pickup code
//   - ObjectAlreadyExistsError: duplicate key on create or a taken pickup code
//   - InvalidStateError: a transition guard failed; retrying is pointless
//   - PreconditionFailedError: optimistic-concurrency collision; re-fetch and retry
//   - StorageError: repository or object store I/O failure
//   - ErrSignatureInvalid: forged or mismatched payment proof, reported without detail
package errs
