package automate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "sentinel only",
			err:  &Error{Op: "ListClients", Err: ErrRequest},
			want: "ListClients: remote request failed",
		},
		{
			name: "status and body",
			err:  &Error{Op: "ListComputers", Err: ErrRequest, StatusCode: 400, Body: `{"Message":"bad"}`},
			want: `ListComputers: remote request failed (status 400): {"Message":"bad"}`,
		},
		{
			name: "message and cause",
			err:  &Error{Op: "login", Err: ErrAuthentication, Msg: "two-factor passcode required", Cause: context.Canceled},
			want: "login: two-factor passcode required: authentication failed: context canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := fmt.Errorf("page 3: %w", &Error{Op: "GetComputer", Err: ErrRequest, Cause: context.DeadlineExceeded, StatusCode: 0})

	assert.True(t, errors.Is(err, ErrRequest))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, ErrAuthentication))
	assert.Equal(t, 0, StatusCode(err))

	assert.Equal(t, 404, StatusCode(&Error{Op: "GetGroup", Err: ErrRequest, StatusCode: 404}))
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
}
