package classroom

import (
	"crypto/rand"
	"fmt"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ValidateCode checks the class-code format: exactly 6 uppercase letters or
// digits, with at least one of each.
func ValidateCode(code string) error {
	if len(code) != 6 {
		return fmt.Errorf("class code must be exactly 6 characters")
	}

	hasLetter, hasDigit := false, false
	for _, ch := range code {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasLetter = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		default:
			return fmt.Errorf("class code may only contain uppercase letters and digits")
		}
	}

	if !hasLetter || !hasDigit {
		return fmt.Errorf("class code must contain at least one letter and one digit")
	}

	return nil
}

// GenerateCode produces a random class code satisfying ValidateCode.
func GenerateCode() (string, error) {
	for {
		buf := make([]byte, 6)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}

		code := make([]byte, 6)
		for i, b := range buf {
			code[i] = codeCharset[int(b)%len(codeCharset)]
		}

		if ValidateCode(string(code)) == nil {
			return string(code), nil
		}
	}
}
