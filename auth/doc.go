// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password, token, and ID utilities.

# Passwords

Passwords are hashed with bcrypt:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, attempt) // ErrInvalidCredentials on mismatch

Passwords shorter than MinPasswordLength characters are rejected with
ErrWeakPassword.

# Tokens

Session and password-reset tokens are random 24-byte secrets:

	token, err := auth.GenerateToken()

Only HashToken(token, secret) is stored. The hash is HMAC-SHA256, so a
presented token is verified by hashing it again and looking up the result.

# IDs

Record IDs are random UUIDs:

	id := auth.NewID()

# IP Hashing

Sign-in attempts are logged with a salted IP hash instead of the address:

	hash := auth.HashIP(ipAddress, salt)
*/
package auth
