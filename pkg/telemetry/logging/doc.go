// Package logging builds the *slog.Logger used by confkit commands.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//		Level:  "info",
//		Format: "json",
//		Redact: true,
//	})
//
//	logger.Info("loaded", "db_password", pw) // db_password=***
//
// # Redaction
//
// When Redact is set the handler passes every attribute through a
// mask.Masker: values under sensitive keys are hidden and secret-looking
// strings (bearer tokens, URL credentials, API keys) are rewritten.
//
// # Context Fields
//
// Values stored with WithCommand, WithProfile and WithRunID are added to
// every record logged with a *Context method.
package logging
