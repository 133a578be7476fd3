package agent

import "errors"

var (
	// ErrUnknownOption is returned for an executor extra option that is not recognized.
	ErrUnknownOption = errors.New("unknown executor option")

	// ErrInvalidOption is returned when an extra option has the wrong type.
	ErrInvalidOption = errors.New("invalid executor option value")

	// ErrUnknownEarlyStopping is returned for an early-stopping method other than force or generate.
	ErrUnknownEarlyStopping = errors.New("unknown early stopping method")

	// ErrToolMismatch is returned when the agent's allowed tools differ from the executor's tools.
	ErrToolMismatch = errors.New("allowed tools do not match provided tools")
)
