package common

// RequestIDHeaderName is the HTTP header used to tag outbound API requests
// so they can be correlated with server logs.
const RequestIDHeaderName = "X-Request-ID"

// EnvPrefix prefixes every environment variable read by the client config.
const EnvPrefix = "FILECONV_"
