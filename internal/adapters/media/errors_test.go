package media

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Cause
	}{
		{"permission sentinel", os.ErrPermission, CauseDenied},
		{"wrapped permission", fmt.Errorf("open /dev/video0: %w", os.ErrPermission), CauseDenied},
		{"v4l2 denied message", errors.New("v4l2: Permission denied"), CauseDenied},
		{"not exist sentinel", os.ErrNotExist, CauseNotFound},
		{"mediadevices no driver", errors.New("failed to find the best driver that fits the constraints"), CauseNotFound},
		{"unplugged device", errors.New("read /dev/video0: no such device"), CauseNotFound},
		{"device busy", errors.New("open /dev/video0: device or resource busy"), CauseBusy},
		{"capture aborted", errors.New("frame read aborted"), CauseInterrupted},
		{"closed device", os.ErrClosed, CauseInterrupted},
		{"anything else", errors.New("codec negotiation exploded"), CauseUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Cause)
			assert.NotEmpty(t, got.Reason, "every cause carries a user-facing reason")
		})
	}
}

func TestAccessErrorUnwrap(t *testing.T) {
	ae := Classify(fmt.Errorf("getUserMedia: %w", os.ErrPermission))
	assert.True(t, errors.Is(ae, os.ErrPermission))
	assert.Equal(t, ae.Reason, ae.Error())
}
