package utils

import "strings"

// MinPasswordLength is the account password floor.
const MinPasswordLength = 6

// IsValidEmail does a cheap shape check; real validation happens when the
// address is used.
func IsValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t")
}

// IsValidPassword enforces the minimum password length.
func IsValidPassword(password string) bool {
	return len(password) >= MinPasswordLength
}
