// Package log provides secure logging for linkboard, built on top of the
// standard slog package.
//
// The SecureHandler sanitizes sensitive information before it reaches the
// output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Values of keys that name secrets (password, token, api_key, ...)
//   - Values that look like credentials (JWTs, bearer tokens, AWS keys)
//   - Credentials embedded in URLs: userinfo and token-like query parameters
//
// Result Documents are often fetched from pre-signed or token-protected URLs,
// so the source URL is logged with its credentials removed rather than
// dropped entirely.
//
//	logger := log.NewLogger(os.Stderr, log.Options{Verbose: true})
//	logger.Warn("fetch failed",
//	    "source", "https://user:pw@reports.example.com/results.json?token=abc",
//	)
//	// source=https://REDACTED@reports.example.com/results.json?token=%2A%2A%2AREDACTED%2A%2A%2A
package log
