package config

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// SSHKey is one registered public key: its fingerprint and the comment
// field from the authorized_keys-style line it was read from, if any.
type SSHKey struct {
	Fingerprint string `toml:"fingerprint"`
	Comment     string `toml:"comment"`
}

// SSHKeyRegistry is the persisted set of keys allowed to open a session
// against the (not yet implemented) SSH front-end. The registry itself is
// the piece of persisted state kept in scope independent of that front end.
type SSHKeyRegistry struct {
	Keys []SSHKey `toml:"keys"`
}

// LoadSSHKeyRegistry reads the registry file at path, returning an empty
// registry if it does not yet exist.
func LoadSSHKeyRegistry(path string) (*SSHKeyRegistry, error) {
	reg := &SSHKeyRegistry{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return reg, nil
	}
	if _, err := toml.DecodeFile(path, reg); err != nil {
		return nil, fmt.Errorf("config: parsing ssh key registry %s: %w", path, err)
	}
	return reg, nil
}

// SaveTo writes the registry to path as TOML.
func (r *SSHKeyRegistry) SaveTo(path string) error {
	f, err := os.Create(path) // #nosec G304 -- user-specified registry path
	if err != nil {
		return fmt.Errorf("config: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(r); err != nil {
		return fmt.Errorf("config: encoding %s: %w", path, err)
	}
	return nil
}

// AddKey registers a public key read from an authorized_keys-style line
// ("<type> <base64> [comment]"), storing its fingerprint rather than the
// raw key material. Re-adding an already-registered fingerprint is a
// no-op, not an error.
func (r *SSHKeyRegistry) AddKey(line string) (SSHKey, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) < 2 {
		return SSHKey{}, fmt.Errorf("config: malformed public key line %q", line)
	}

	raw, err := base64.StdEncoding.DecodeString(fields[1])
	if err != nil {
		return SSHKey{}, fmt.Errorf("config: decoding public key material: %w", err)
	}

	sum := sha256.Sum256(raw)
	key := SSHKey{
		Fingerprint: "SHA256:" + base64.RawStdEncoding.EncodeToString(sum[:]),
	}
	if len(fields) > 2 {
		key.Comment = strings.Join(fields[2:], " ")
	}

	for _, existing := range r.Keys {
		if existing.Fingerprint == key.Fingerprint {
			return existing, nil
		}
	}

	r.Keys = append(r.Keys, key)
	return key, nil
}
