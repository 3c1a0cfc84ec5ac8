// Package config provides the configuration container.
//
// A Config runs the loading pipeline for an ordered list of sources and
// holds the validated result as an immutable tree:
//
//  1. Each source is loaded in order (env, file, object, plugin)
//  2. The results are deep-merged, later sources winning
//  3. ${...} placeholders are expanded
//  4. ENC[AES256_GCM,...] envelopes are decrypted when a key is available
//  5. The tree is validated against the optional schema
//
// Provenance (which source supplied which path) is recorded along the way
// and attached to validation errors.
//
// # Loading
//
//	cfg, err := config.Load(ctx, config.Options{
//		Sources: []source.Source{
//			source.File("config/default.yaml"),
//			source.OptionalFile("config/${PROFILE}.yaml"),
//			source.Env("APP_"),
//		},
//		Schema: appSchema,
//	})
//
// New defers the pipeline to the first read; Err reports its failure.
//
// # Profiles
//
// The active profile is Options.Profile, else CONFKIT_PROFILE from the
// environment, else "development". It is substituted for ${PROFILE} in
// file paths and selects an entry of Options.Profiles, whose defaults are
// merged first and whose sources, when present, replace Options.Sources.
//
// # Encryption key
//
// The decryption key is looked up in order: Options.EncryptionKey, the
// CONFKIT_ENCRYPTION_KEY environment variable, Options.EncryptionKeyFile,
// then the "encryption-key" secret of Options.Secrets. Without a key,
// envelopes are left as they are.
//
// # Watching
//
// Watch opens a file watcher per file source. Changes are debounced and
// trigger Reload, which re-runs the pipeline and notifies listeners
// registered with On:
//
//	cfg.On(config.EventChange, func(ev config.Event) {
//		log.Printf("changed: %v", ev.ChangedPaths)
//	})
//	if err := cfg.Watch(ctx, config.WatchOptions{}); err != nil {
//		return err
//	}
//	defer cfg.Unwatch()
//
// # Thread Safety
//
// All methods are safe for concurrent use. Reads see the last successfully
// loaded snapshot; pipeline runs are serialized.
package config
