package oauthflow

import "fmt"

// Code is the machine-readable outcome carried back to the frontend as a
// redirect query parameter. Human-readable detail stays in server logs.
type Code string

const (
	CodeProviderDenied Code = "linkedin_denied"
	CodeMissingCode    Code = "linkedin_no_code"
	CodeInvalidState   Code = "linkedin_state_invalid"
	CodeServerConfig   Code = "server_config"
	CodeExchangeFailed Code = "token_exchange_failed"
	CodeNoEmail        Code = "no_email"
	CodeOAuthFailed    Code = "oauth_failed"
)

// FlowError is a terminal failure of a verification flow. Code is safe to
// expose to the browser; Detail is server-side only and may reference the
// provider's error description.
type FlowError struct {
	Code   Code
	Detail string
	cause  error
}

func (e *FlowError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("oauth flow failed (%s): %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("oauth flow failed (%s)", e.Code)
}

func (e *FlowError) Unwrap() error { return e.cause }

func flowErr(code Code, detail string) *FlowError {
	return &FlowError{Code: code, Detail: detail}
}

func flowErrWrap(code Code, detail string, cause error) *FlowError {
	return &FlowError{Code: code, Detail: detail, cause: cause}
}

// ErrorCode extracts the redirect code from err, falling back to
// CodeOAuthFailed for anything that is not a FlowError.
func ErrorCode(err error) Code {
	if fe, ok := err.(*FlowError); ok {
		return fe.Code
	}
	return CodeOAuthFailed
}
