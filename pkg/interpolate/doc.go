// Package interpolate expands ${...} placeholders in configuration trees.
//
// A placeholder names either an environment variable or a dot-path into the
// configuration itself:
//
//	database:
//	  host: db.internal
//	  url: postgres://${DB_USER}@${database.host}:5432/app
//
// Identifiers that look like environment variables (all upper-case, or
// containing an underscore) are looked up in the environment first and in
// the tree second; every other identifier is tried in the opposite order.
// An identifier nothing resolves expands to the fallback given with
// ${name:-fallback}, or to the empty string.
//
// ${secret:name} placeholders are resolved through a SecretLookup when one
// is configured.
//
// Resolved values that themselves contain placeholders are expanded
// recursively. A reference cycle fails with *CircularReferenceError and
// nesting beyond Options.MaxDepth fails with *DepthExceededError.
package interpolate
