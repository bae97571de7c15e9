// Package mocks provides mock implementations for testing the gateway services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	identity := mocks.NewMockIdentityClient(ctrl)
//	identity.EXPECT().SendLoginOTP(gomock.Any(), "ana@example.edu").Return(payload, nil)
package mocks

// Generate mock for IdentityClient interface from internal/ports package.
// This creates MockIdentityClient with methods for every identity service endpoint:
// registration, login and password reset flows plus the bearer-authenticated student calls.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_client_mock.go github.com/target/attendance-gateway/internal/ports IdentityClient
