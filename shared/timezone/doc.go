// Package timezone renders timestamps in the application timezone.
//
// The zone comes from APP_TIMEZONE and must be an IANA name such as "UTC" or
// "Asia/Jakarta". cmd/app calls Load at startup; otherwise the first call to
// Now or Format loads it from config.
//
//	now := timezone.Now()
//	stamp := timezone.Format(now, time.RFC3339)
package timezone
