// Package auth issues and validates bearer access tokens and hashes user
// passwords.
package auth
