package errors

// Code is the wire-level error class reported to clients.
type Code string

const (
	CodeUnauthorized   Code = "unauthorized"
	CodeInvalidPayload Code = "invalid_payload"
	CodeRateLimited    Code = "rate_limited"
	CodeForbidden      Code = "forbidden"
	CodeNotMember      Code = "not_member"
	CodeNotFound       Code = "not_found"
	CodeInternal       Code = "server_error"
)
