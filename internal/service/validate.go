package service

import "regexp"

var emailRe = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

const minPasswordLen = 6

// validateCredentials checks the signup/login shape. Password length is
// checked first so its specific message wins over a bad email.
func validateCredentials(email, password string) *ValidationError {
	if len(password) < minPasswordLen {
		return invalid("password", "Password must contain at least 6 characters")
	}
	if !emailRe.MatchString(email) {
		return invalid("email", "invalid email")
	}
	return nil
}

func validEmail(email string) bool { return emailRe.MatchString(email) }
