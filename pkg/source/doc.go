// Package source loads raw configuration trees from the places configuration
// lives: environment variables, files, in-memory maps and named plugins.
//
// A Source is a small tagged descriptor; its Kind selects the Loader that
// knows how to read it. Every loader returns a map[string]any tree and never
// merges, interpolates or validates anything itself, that is the job of the
// config pipeline.
//
// # Environment Variables
//
// The env loader keeps variables whose upper-cased name starts with the
// configured prefix, strips it and maps the remainder to a dot path. A double
// separator ("__" by default) marks nesting and a single underscore inside a
// segment is a camelCase word break:
//
//	APP_DATABASE__POOL_SIZE=10  (prefix "APP_")  ->  database.poolSize = 10
//
// Values are coerced: integers, decimals, booleans and JSON arrays/objects
// become their typed equivalents, everything else stays a string.
//
// # Files
//
// File paths may contain ${PROFILE}, which is replaced by the active profile
// before the path is resolved against the working directory. The format is
// taken from the descriptor or from the extension (.json, .yaml, .yml, .env);
// unknown extensions are read as JSON.
package source
