package config

import (
	"encoding/base64"
	"path/filepath"
	"testing"
)

func sampleKeyLine(t *testing.T) string {
	t.Helper()
	material := base64.StdEncoding.EncodeToString([]byte("fake-ed25519-key-material"))
	return "ssh-ed25519 " + material + " student@rocky"
}

func TestAddKeyAssignsFingerprint(t *testing.T) {
	reg := &SSHKeyRegistry{}

	key, err := reg.AddKey(sampleKeyLine(t))
	if err != nil {
		t.Fatalf("AddKey failed: %v", err)
	}
	if key.Fingerprint == "" {
		t.Error("expected a non-empty fingerprint")
	}
	if key.Comment != "student@rocky" {
		t.Errorf("expected comment student@rocky, got %q", key.Comment)
	}
	if len(reg.Keys) != 1 {
		t.Fatalf("expected 1 registered key, got %d", len(reg.Keys))
	}
}

func TestAddKeyIsIdempotent(t *testing.T) {
	reg := &SSHKeyRegistry{}
	line := sampleKeyLine(t)

	if _, err := reg.AddKey(line); err != nil {
		t.Fatalf("first AddKey failed: %v", err)
	}
	if _, err := reg.AddKey(line); err != nil {
		t.Fatalf("second AddKey failed: %v", err)
	}
	if len(reg.Keys) != 1 {
		t.Errorf("expected re-adding the same key to be a no-op, got %d keys", len(reg.Keys))
	}
}

func TestAddKeyRejectsMalformedLine(t *testing.T) {
	reg := &SSHKeyRegistry{}
	if _, err := reg.AddKey("not-a-key-line"); err == nil {
		t.Error("expected an error for a malformed key line")
	}
}

func TestSSHKeyRegistryRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "ssh_keys.toml")

	reg := &SSHKeyRegistry{}
	if _, err := reg.AddKey(sampleKeyLine(t)); err != nil {
		t.Fatalf("AddKey failed: %v", err)
	}
	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadSSHKeyRegistry(path)
	if err != nil {
		t.Fatalf("LoadSSHKeyRegistry failed: %v", err)
	}
	if len(loaded.Keys) != 1 {
		t.Fatalf("expected 1 key after reload, got %d", len(loaded.Keys))
	}
	if loaded.Keys[0].Fingerprint != reg.Keys[0].Fingerprint {
		t.Errorf("fingerprint mismatch after reload: %q vs %q", loaded.Keys[0].Fingerprint, reg.Keys[0].Fingerprint)
	}
}
