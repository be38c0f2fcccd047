package usecase

import (
	"errors"
	"fmt"

	appErrors "github.com/Akhielesh/secure-chat/pkg/errors"
)

// ErrPersistence indicates an infrastructure/repository failure inside a use case
var ErrPersistence = fmt.Errorf("chat use case persistence error")

// ErrDropped marks a request discarded without any reply, such as a message
// from a sender who is not a room member.
var ErrDropped = errors.New("chat use case request dropped")

// persistence classifies an adapter failure as server_error while keeping
// ErrPersistence and the cause in the chain.
func persistence(err error) error {
	return appErrors.ErrStorage(fmt.Errorf("%w: %w", ErrPersistence, err))
}
