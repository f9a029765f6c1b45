// Package otp holds outstanding one-time passcodes keyed by email address.
// Issuing a new code for an email overwrites the previous one; codes expire
// after a TTL and verify at most once.
package otp

import "context"

// Store is the keyed passcode store injected into the auth flow.
//
// Put records code as the only outstanding passcode for email, replacing any
// previous one and arming the expiry.
//
// Consume atomically compares the submitted code against the outstanding one.
// On a match the entry is deleted and true is returned; on a mismatch or a
// missing/expired entry the store is left unchanged and false is returned.
// Implementations must linearize Put and Consume per email so a confirmation
// always observes the most recently issued code.
type Store interface {
	Put(ctx context.Context, email, code string) error
	Consume(ctx context.Context, email, code string) (bool, error)
}
