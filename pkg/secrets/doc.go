/*
Package secrets resolves named secrets through an ordered chain of providers.

The loader uses it for two things: finding the passphrase that opens
encrypted values, and expanding ${secret:name} placeholders.

# Providers

Every provider implements SecretProvider:

  - StaticProvider: a fixed name to value map, used for keys passed in code
  - EnvProvider: environment variables from a snapshot, with an optional
    prefix ("encryption-key" with prefix "CONFKIT_" reads
    CONFKIT_ENCRYPTION_KEY)
  - FileProvider: one file per secret, either in a directory or mapped
    explicitly by name; files must be 0600 or 0400

# Manager

Manager tries providers in order. The first provider that supports a name
and returns a value wins; the value is cached for the configured TTL:

	manager := secrets.NewManager(
		[]secrets.SecretProvider{
			secrets.NewEnvProvider("CONFKIT_", snapshot),
			secrets.NewFileProvider("/run/secrets"),
		},
		secrets.CacheConfig{Enabled: true, TTL: 5 * time.Minute, MaxSize: 100},
	)

	key, err := manager.GetSecret(ctx, secrets.EncryptionKeyName)

Refresh clears the cache and asks every RefreshableProvider to reload.
*/
package secrets
