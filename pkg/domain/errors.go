package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidState is returned when an operation is not allowed in the current status.
var ErrInvalidState = errors.New("operation not allowed in current state")

// ErrUnknownOption is returned when the chosen option is not offered by the current node.
var ErrUnknownOption = errors.New("option not offered by current node")

// ErrNavigationOption is returned when a navigation-only option reaches Choose.
// Hosts are expected to intercept these values before calling the engine.
var ErrNavigationOption = errors.New("option is a navigation action")

// ErrSubmissionInFlight is returned when a lead is submitted while another submission is pending.
var ErrSubmissionInFlight = errors.New("lead submission already in flight")
