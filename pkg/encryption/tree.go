package encryption

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"mercator-hq/confkit/pkg/tree"
)

// ContainsEncrypted reports whether any string leaf of data, including
// array elements, carries the envelope markers.
func ContainsEncrypted(data map[string]any) bool {
	return len(EncryptedPaths(data)) > 0
}

// EncryptedPaths returns the sorted dot paths of every envelope in data.
// Array elements are addressed by index.
func EncryptedPaths(data map[string]any) []string {
	var paths []string
	collectEncrypted(data, nil, &paths)
	sort.Strings(paths)
	return paths
}

func collectEncrypted(v any, segs []string, out *[]string) {
	switch t := v.(type) {
	case string:
		if IsEncrypted(t) {
			*out = append(*out, tree.Join(segs...))
		}
	case map[string]any:
		for k, child := range t {
			collectEncrypted(child, append(segs, k), out)
		}
	case []any:
		for i, child := range t {
			collectEncrypted(child, append(segs, strconv.Itoa(i)), out)
		}
	}
}

// DecryptTree returns a copy of data with every envelope replaced by its
// plaintext. Errors carry the path of the failing value.
func (c *Cipher) DecryptTree(data map[string]any, passphrase string) (map[string]any, error) {
	out, err := c.decryptValue(data, nil, passphrase)
	if err != nil {
		return nil, err
	}
	m, _ := out.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func (c *Cipher) decryptValue(v any, segs []string, passphrase string) (any, error) {
	switch t := v.(type) {
	case string:
		if !IsEncrypted(t) {
			return t, nil
		}
		plain, err := c.Decrypt(t, passphrase)
		if err != nil {
			return nil, withPath(err, tree.Join(segs...))
		}
		return plain, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			r, err := c.decryptValue(child, append(segs, k), passphrase)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			r, err := c.decryptValue(child, append(segs, strconv.Itoa(i)), passphrase)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

func withPath(err error, path string) error {
	var de *DecryptionError
	if errors.As(err, &de) {
		de.Path = path
		return de
	}
	var me *MalformedEnvelopeError
	if errors.As(err, &me) {
		me.Path = path
		return me
	}
	return fmt.Errorf("failed to decrypt value at %q: %w", path, err)
}

// EncryptTree returns a copy of data with the string leaves at paths
// replaced by envelopes. Values that are already encrypted are left alone.
// A path that is missing or does not hold a string is an error.
func (c *Cipher) EncryptTree(data map[string]any, passphrase string, paths ...string) (map[string]any, error) {
	out := tree.CloneMap(data)
	for _, p := range paths {
		v, ok := tree.Get(out, p)
		if !ok {
			return nil, fmt.Errorf("path %q not found", p)
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("value at %q is %T, only strings can be encrypted", p, v)
		}
		if IsEncrypted(s) {
			continue
		}
		enc, err := c.Encrypt(s, passphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt %q: %w", p, err)
		}
		tree.Set(out, p, enc)
	}
	return out, nil
}
