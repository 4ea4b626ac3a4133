package media

import (
	"errors"
	"io/fs"
	"os"
	"strings"
)

// Cause is the fixed classification of a capture failure.
type Cause string

const (
	CauseDenied      Cause = "denied"
	CauseNotFound    Cause = "not_found"
	CauseBusy        Cause = "busy"
	CauseInterrupted Cause = "interrupted"
	CauseUnknown     Cause = "unknown"
)

// AccessError is a recoverable capture failure with a human-readable reason.
// The controller surfaces Reason as a dismissible message and stays in a
// retryable state.
type AccessError struct {
	Cause  Cause
	Reason string
	err    error
}

func (e *AccessError) Error() string { return e.Reason }
func (e *AccessError) Unwrap() error { return e.err }

// Classify buckets a capture error into the fixed causes. Driver errors come
// from V4L2/ALSA through pion/mediadevices, so both errno sentinels and the
// library's own messages are matched.
func Classify(err error) *AccessError {
	switch {
	case errors.Is(err, os.ErrPermission) || errors.Is(err, fs.ErrPermission) ||
		containsAny(err, "permission denied", "operation not permitted"):
		return &AccessError{
			Cause:  CauseDenied,
			Reason: "camera or microphone access denied, allow it and try again",
			err:    err,
		}
	case errors.Is(err, os.ErrNotExist) ||
		containsAny(err, "failed to find the best driver", "no such device", "no such file"):
		return &AccessError{
			Cause:  CauseNotFound,
			Reason: "no camera or microphone found, check that a device is connected",
			err:    err,
		}
	case containsAny(err, "device or resource busy", "resource busy", "not readable"):
		return &AccessError{
			Cause:  CauseBusy,
			Reason: "camera is busy or already in use by another application",
			err:    err,
		}
	case errors.Is(err, os.ErrClosed) || containsAny(err, "interrupted", "aborted", "canceled"):
		return &AccessError{
			Cause:  CauseInterrupted,
			Reason: "media capture was interrupted, try again",
			err:    err,
		}
	default:
		return &AccessError{
			Cause:  CauseUnknown,
			Reason: "something went wrong while accessing your camera or microphone",
			err:    err,
		}
	}
}

func containsAny(err error, subs ...string) bool {
	msg := strings.ToLower(err.Error())
	for _, s := range subs {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
