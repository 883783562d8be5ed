package common

// AuthorizationHeaderName is the gRPC metadata key carrying the bearer token.
const AuthorizationHeaderName = "authorization"

// BearerScheme is the token scheme expected in the authorization header.
const BearerScheme = "Bearer"

// TokenType is reported to clients on successful login.
const TokenType = "bearer"
