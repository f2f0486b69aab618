package common

// AuthorizationHeaderName is the HTTP header carrying the bearer credential.
const AuthorizationHeaderName = "Authorization"

// AuthorizationMetadataKey is the gRPC metadata key carrying the bearer
// credential. gRPC lowercases metadata keys.
const AuthorizationMetadataKey = "authorization"

// BearerScheme is the only accepted credential scheme (matched case-insensitively).
const BearerScheme = "Bearer"
