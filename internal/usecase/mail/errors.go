package mail

import "errors"

// Sentinel errors for mail dispatch.
var (
	// ErrChannelDisabled is returned by a channel asked to send while unconfigured.
	ErrChannelDisabled = errors.New("mail channel is disabled")

	// ErrInvalidMessage indicates a message without a usable recipient or subject.
	ErrInvalidMessage = errors.New("invalid mail message")

	// ErrMailDropped indicates that no worker slot became free in time.
	// It is only used for logging and metrics.
	ErrMailDropped = errors.New("mail dropped due to pool saturation")

	// ErrServiceClosed is returned by Send after Shutdown.
	ErrServiceClosed = errors.New("mail service is shut down")
)
