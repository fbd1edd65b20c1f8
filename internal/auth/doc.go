// Package auth owns user accounts and the single active login session.
//
// Credentials stores users in users.json. Passwords are never stored: each
// user gets a random 16-byte salt, and the stored digest is
//
//	bcrypt(base64(HMAC-SHA256(salt, password)))
//
// The HMAC step keeps arbitrarily long passwords inside bcrypt's 72-byte input
// limit. Verification recomputes the digest; unknown usernames and wrong
// passwords both return ErrInvalidCredentials.
//
// Password policy: at least MinPasswordLength (6) and at most
// MaxPasswordLength (128) bytes. Usernames are trimmed, must be non-empty, at
// most 64 bytes, and may not contain whitespace.
//
// Sessions stores at most one session in session.json. A session lasts
// DefaultSessionTTL (24h) unless configured otherwise, and carries an HS256
// token signed with the key in session.key. A session is absent when the file
// is missing, the token does not verify, or now >= expires_at. Expired session
// files are not deleted on read; they are overwritten by the next login or
// removed by logout.
package auth
