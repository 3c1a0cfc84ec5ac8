package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/confkit/pkg/config"
	"mercator-hq/confkit/pkg/encryption"
	"mercator-hq/confkit/pkg/secrets"
	"mercator-hq/confkit/pkg/source"
)

var cryptFlags struct {
	key     string
	keyFile string
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt [value]",
	Short: "Encrypt a value for use in a configuration file",
	Long: `Encrypt a value into an ENC[AES256_GCM,...] envelope that the loader
decrypts at load time. The value is read from stdin when no argument is
given.

The key is taken from --key, then --key-file, then $CONFKIT_ENCRYPTION_KEY,
then encryption.key_file in the manifest.

Examples:
  confkit encrypt 's3cret' --key-file .confkit.key
  echo -n 's3cret' | CONFKIT_ENCRYPTION_KEY=... confkit encrypt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncrypt,
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt [envelope]",
	Short: "Decrypt an ENC[...] envelope",
	Long: `Decrypt an envelope produced by confkit encrypt. The envelope is read
from stdin when no argument is given. Key resolution matches encrypt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecrypt,
}

func init() {
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(decryptCmd)

	for _, c := range []*cobra.Command{encryptCmd, decryptCmd} {
		c.Flags().StringVar(&cryptFlags.key, "key", "", "encryption key (prefer --key-file or the environment)")
		c.Flags().StringVar(&cryptFlags.keyFile, "key-file", "", "file holding the encryption key (0600 or 0400)")
	}
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	value, err := argOrStdin(cmd, args)
	if err != nil {
		return err
	}
	key, err := resolveKey(cmd)
	if err != nil {
		return err
	}

	envelope, err := encryption.NewCipher().Encrypt(value, key)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), envelope)
	return nil
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	value, err := argOrStdin(cmd, args)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if !encryption.IsEncrypted(value) {
		return fmt.Errorf("input is not an encrypted envelope")
	}
	key, err := resolveKey(cmd)
	if err != nil {
		return err
	}

	plaintext, err := encryption.NewCipher().Decrypt(value, key)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), plaintext)
	return nil
}

func argOrStdin(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(bufio.NewReader(cmd.InOrStdin()))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// resolveKey walks the key chain. The manifest is optional here so the
// commands work outside a project.
func resolveKey(cmd *cobra.Command) (string, error) {
	providers := []secrets.SecretProvider{
		secrets.NewStaticProvider(map[string]string{secrets.EncryptionKeyName: cryptFlags.key}),
	}
	if cryptFlags.keyFile != "" {
		providers = append(providers, secrets.NewKeyFileProvider(secrets.EncryptionKeyName, cryptFlags.keyFile))
	}
	providers = append(providers, secrets.NewEnvProvider(config.KeyEnvPrefix, source.EnvironSnapshot()))

	if cryptFlags.key == "" && cryptFlags.keyFile == "" {
		m, err := loadManifest(true)
		if err != nil {
			return "", err
		}
		if kf := m.Path(m.Encryption.KeyFile); kf != "" {
			providers = append(providers, secrets.NewKeyFileProvider(secrets.EncryptionKeyName, kf))
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	key, ok, err := secrets.NewManager(providers, secrets.CacheConfig{}).Lookup(ctx, secrets.EncryptionKeyName)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errNoKey
	}
	return key, nil
}
