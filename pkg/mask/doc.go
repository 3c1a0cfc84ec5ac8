// Package mask redacts sensitive values from configuration trees and log
// attributes.
//
// A Masker hides a value when its key looks sensitive (password, token,
// secret, ...) or when the caller names its path explicitly, and rewrites
// string values that match well-known secret patterns such as bearer
// tokens or API keys. Masking never modifies its input.
//
//	m := mask.New()
//	safe := m.Tree(cfg.All().Map(), decryptedPaths)
package mask
