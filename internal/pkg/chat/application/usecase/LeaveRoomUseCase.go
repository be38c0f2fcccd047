package usecase

import (
	"context"
)

type LeaveRoomInput struct {
	RoomID       string
	ConnectionID string
}

// LeaveRoomUseCase drops a connection's presence entry. It reports whether an
// entry existed, so callers announce user-left only once.
type LeaveRoomUseCase struct {
	Presence Roster
}

func NewLeaveRoomUseCase(presence Roster) *LeaveRoomUseCase {
	return &LeaveRoomUseCase{Presence: presence}
}

func (uc *LeaveRoomUseCase) Execute(ctx context.Context, in LeaveRoomInput) (bool, error) {
	if in.RoomID == "" || in.ConnectionID == "" {
		return false, nil
	}
	removed, err := uc.Presence.Remove(ctx, in.RoomID, in.ConnectionID)
	if err != nil {
		return false, persistence(err)
	}
	return removed, nil
}
