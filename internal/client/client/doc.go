// Package client talks to the AuthKeeper backend over gRPC.
//
// GRPCClient keeps the token pair returned by the last Register, Login or
// RefreshTokens call, attaches the access token to protected calls via an
// interceptor, and when the server rejects an access token it refreshes the
// pair once and retries.
//
// gRPC status codes are mapped to sentinel errors callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrAlreadyExists and
// ErrInvalidArgument. The server's message is kept in the error text.
package client
