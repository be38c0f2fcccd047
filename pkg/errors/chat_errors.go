package errors

var (
	// Domain errors, returned by usecases and repositories
	ErrInvalidRoomID      = InvalidPayload("room id must be 1-64 chars of letters, digits, _ - : .")
	ErrInvalidDisplayName = InvalidPayload("display name must be 1-64 chars")
	ErrInvalidText        = InvalidPayload("text must be 1-2000 chars")
	ErrInvalidAttachment  = InvalidPayload("attachment is unknown or not owned by sender")
	ErrEmptyMessage       = InvalidPayload("message needs text or an attachment")
	ErrInvalidEmoji       = InvalidPayload("emoji is not allowed")
	ErrNotMember          = NotMember("user is not a member of this room")
	ErrMessageNotFound    = NotFound("message not found")
	ErrRoomNotFound       = NotFound("room not found")
	ErrRoomExists         = Forbidden("room already exists")
	ErrEditForbidden      = Forbidden("only the sender may edit within the edit window")
	ErrRateLimited        = RateLimited("too many requests")
	ErrMissingToken       = Unauthorized("missing token")
	ErrInvalidToken       = Unauthorized("invalid token")
)

func ErrStorage(cause error) error {
	return Wrap(CodeInternal, "storage failure", cause)
}
