package oauthflow

// Redact returns a loggable form of a secret, keeping only the last four
// characters. Secrets shorter than eight characters are masked entirely.
func Redact(s string) string {
	if s == "" {
		return ""
	}
	if len(s) < 8 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
