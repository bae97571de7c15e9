package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/target/attendance-gateway/internal/mocks"
	"github.com/target/attendance-gateway/internal/ports"
	"go.uber.org/mock/gomock"
)

func newValidationService(t *testing.T) (*ValidationService, *mocks.MockIdentityClient) {
	t.Helper()
	identity := mocks.NewMockIdentityClient(gomock.NewController(t))
	return NewValidationService(ValidationServiceOptions{Identity: identity}), identity
}

func TestValidateRegistration_PassesRuleMessages(t *testing.T) {
	svc, identity := newValidationService(t)
	identity.EXPECT().ValidateRegistration(gomock.Any(), gomock.Any()).
		Return(payload(t, `{"is_valid":false,"errors":["Password must contain a digit","Email already registered"]}`), nil)

	res := svc.ValidateRegistration(context.Background(), map[string]string{"email": "ana@example.edu"})
	assert.False(t, res.Success)
	assert.Equal(t, "Password must contain a digit", res.Message)
	assert.Len(t, res.Errors, 2)
}

func TestValidateRegistration_Valid(t *testing.T) {
	svc, identity := newValidationService(t)
	identity.EXPECT().ValidateRegistration(gomock.Any(), gomock.Any()).
		Return(payload(t, `{"is_valid":true}`), nil)

	assert.True(t, svc.ValidateRegistration(context.Background(), nil).Success)
}

func TestValidateLogin_NeverEchoesUpstream(t *testing.T) {
	svc, identity := newValidationService(t)
	identity.EXPECT().ValidateLogin(gomock.Any(), ports.Credentials{Email: "ana@example.edu", Password: "pw"}).
		Return(payload(t, `{"is_valid":false,"message":"No user with email ana@example.edu (table users)"}`), nil)

	res := svc.ValidateLogin(context.Background(), ports.Credentials{Email: " ana@example.edu ", Password: "pw"})
	assert.False(t, res.Success)
	assert.Equal(t, MsgInvalidCredentials, res.Message)
}

func TestValidate_TransportErrorsAreGeneric(t *testing.T) {
	svc, identity := newValidationService(t)
	boom := errors.New("dial tcp 10.0.0.5:443: connect: connection refused")
	identity.EXPECT().ValidateFace(gomock.Any(), gomock.Any()).Return(nil, boom)
	identity.EXPECT().ValidateForgotPasswordEmail(gomock.Any(), gomock.Any()).Return(nil, boom)
	identity.EXPECT().ResetPassword(gomock.Any(), gomock.Any()).Return(nil, boom)

	ctx := context.Background()
	for _, res := range []ActionResult{
		svc.ValidateFace(ctx, "data:image/png;base64,AAAA"),
		svc.ValidateForgotPasswordEmail(ctx, "ana@example.edu"),
		svc.ResetPassword(ctx, ports.PasswordReset{ResetToken: "rt", NewPassword: "Secret123!"}),
	} {
		assert.False(t, res.Success)
		assert.Equal(t, MsgServiceUnavailable, res.Message)
	}
}

func TestValidateForgotPasswordEmail(t *testing.T) {
	svc, identity := newValidationService(t)
	gomock.InOrder(
		identity.EXPECT().ValidateForgotPasswordEmail(gomock.Any(), "ana@example.edu").Return(payload(t, `{"is_valid":true}`), nil),
		identity.EXPECT().ValidateForgotPasswordEmail(gomock.Any(), "x@example.edu").Return(payload(t, `{"valid":false}`), nil),
	)
	assert.True(t, svc.ValidateForgotPasswordEmail(context.Background(), "ana@example.edu").Success)

	res := svc.ValidateForgotPasswordEmail(context.Background(), "x@example.edu")
	assert.False(t, res.Success)
	assert.Equal(t, MsgUnknownEmail, res.Message)
}

func TestResetPassword(t *testing.T) {
	t.Run("missing token makes no call", func(t *testing.T) {
		svc, _ := newValidationService(t)
		res := svc.ResetPassword(context.Background(), ports.PasswordReset{NewPassword: "x"})
		assert.False(t, res.Success)
		assert.Contains(t, res.Message, "expired")
	})

	t.Run("rule failure passes message", func(t *testing.T) {
		svc, identity := newValidationService(t)
		identity.EXPECT().ResetPassword(gomock.Any(), gomock.Any()).
			Return(payload(t, `{"success":false,"message":"Password must be at least 8 characters"}`), nil)
		res := svc.ResetPassword(context.Background(), ports.PasswordReset{ResetToken: "rt", NewPassword: "x"})
		assert.False(t, res.Success)
		assert.Equal(t, "Password must be at least 8 characters", res.Message)
	})

	t.Run("success", func(t *testing.T) {
		svc, identity := newValidationService(t)
		identity.EXPECT().ResetPassword(gomock.Any(), ports.PasswordReset{ResetToken: "rt", NewPassword: "Secret123!"}).
			Return(payload(t, `{"success":true}`), nil)
		res := svc.ResetPassword(context.Background(), ports.PasswordReset{ResetToken: "rt", NewPassword: "Secret123!"})
		assert.True(t, res.Success)
	})
}
