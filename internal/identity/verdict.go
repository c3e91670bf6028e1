package identity

import "context"

// ReasonWrongPassword is the backend reason for a known name with a bad credential.
const ReasonWrongPassword = "wrong_password"

// Verdict is the authoritative backend answer to a verification attempt.
// It is one of Authenticated, Rejected or Unavailable.
type Verdict interface {
	verdict()
}

// Authenticated means the backend accepted the name and credential.
type Authenticated struct {
	Name string
}

// Rejected means the backend refused the attempt. Reason is
// ReasonWrongPassword for a credential mismatch; anything else, including
// an empty reason, means the name is unknown.
type Rejected struct {
	Reason string
}

// Unavailable means the backend could not be reached or answered garbage.
type Unavailable struct {
	Err error
}

func (Authenticated) verdict() {}
func (Rejected) verdict()      {}
func (Unavailable) verdict()   {}

// Verifier checks a name and credential against the backend.
type Verifier interface {
	Verify(ctx context.Context, name, credential string) Verdict
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, name, credential string) Verdict

// Verify calls f.
func (f VerifierFunc) Verify(ctx context.Context, name, credential string) Verdict {
	return f(ctx, name, credential)
}
