package git

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"mercator-hq/confkit/pkg/source"
)

// authMethod builds the transport auth for a remote repository. A token
// takes precedence over an SSH key; with neither the remote is accessed
// anonymously.
func authMethod(opts Options, lc source.LoadContext) (transport.AuthMethod, error) {
	token := opts.Token
	if token == "" && opts.TokenEnv != "" {
		token, _ = lc.Lookup(opts.TokenEnv)
	}
	if token != "" {
		return &http.BasicAuth{
			Username: "git", // ignored by token-authenticating hosts
			Password: token,
		}, nil
	}

	if opts.SSHKey == "" {
		return nil, nil
	}

	info, err := os.Stat(opts.SSHKey)
	if err != nil {
		return nil, fmt.Errorf("failed to access SSH key file: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		return nil, fmt.Errorf("SSH key file permissions too open (%o), should be 0600", mode)
	}

	auth, err := ssh.NewPublicKeysFromFile("git", opts.SSHKey, opts.SSHPassphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key: %w", err)
	}
	return auth, nil
}
