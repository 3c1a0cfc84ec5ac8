// Package manifest loads confkit.yaml, the file that tells the confkit
// command which sources to load and how.
//
// # Example
//
//	profile: development
//	cwd: .
//	sources:
//	  - kind: file
//	    path: config/${PROFILE}.yaml
//	    optional: true
//	  - kind: plugin
//	    name: sqlite
//	    options: {path: config.db}
//	  - kind: env
//	    prefix: APP_
//	schema: schema.yaml
//	encryption:
//	  key_file: .confkit.key
//	watch:
//	  debounce: 250ms
//	refresh:
//	  schedule: "*/5 * * * *"
//	plugins:
//	  sqlite: {}
//
// Relative paths (cwd, schema, encryption.key_file, secrets.dir) are
// resolved against the manifest's directory. Load applies defaults and
// returns a ValidationError listing every problem found.
//
// Process settings come from the environment (CONFKIT_MANIFEST,
// CONFKIT_PROFILE, CONFKIT_LOG_LEVEL, CONFKIT_LOG_FORMAT) and override the
// file; command-line flags override both.
package manifest
