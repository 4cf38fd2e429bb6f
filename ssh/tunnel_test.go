package ssh

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/askdb/askdb/config"
	xssh "golang.org/x/crypto/ssh"
)

func writeTestKey(t *testing.T, passphrase string) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	var block *pem.Block
	if passphrase != "" {
		block, err = xssh.MarshalPrivateKeyWithPassphrase(priv, "", []byte(passphrase))
	} else {
		block, err = xssh.MarshalPrivateKey(priv, "")
	}
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func authError(t *testing.T, err error) *Error {
	t.Helper()
	var tunnelErr *Error
	if !errors.As(err, &tunnelErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if tunnelErr.Op != "auth" {
		t.Fatalf("Op = %q, want auth", tunnelErr.Op)
	}
	return tunnelErr
}

func TestNewTunnelRequiresKeyPath(t *testing.T) {
	_, err := NewTunnel(config.SSHConfig{Host: "bastion", Port: 22, User: "deploy"}, "db", 5432)
	authError(t, err)
}

func TestNewTunnelRejectsMissingKey(t *testing.T) {
	cfg := config.SSHConfig{
		Host: "bastion", Port: 22, User: "deploy",
		KeyPath: filepath.Join(t.TempDir(), "absent"),
	}
	_, err := NewTunnel(cfg, "db", 5432)
	authError(t, err)
}

func TestNewTunnelRejectsGarbageKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(path, []byte("not a key"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg := config.SSHConfig{Host: "bastion", Port: 22, User: "deploy", KeyPath: path}
	_, err := NewTunnel(cfg, "db", 5432)
	authError(t, err)
}

func TestNewTunnelLoadsKey(t *testing.T) {
	cfg := config.SSHConfig{
		Host: "bastion.internal", Port: 22, User: "deploy",
		KeyPath: writeTestKey(t, ""),
	}
	tun, err := NewTunnel(cfg, "db.internal", 5432)
	if err != nil {
		t.Fatalf("NewTunnel: %v", err)
	}
	if tun.bastion != "bastion.internal:22" {
		t.Errorf("bastion = %q", tun.bastion)
	}
	if tun.target != "db.internal:5432" {
		t.Errorf("target = %q", tun.target)
	}
}

func TestNewTunnelKeyPassphrase(t *testing.T) {
	path := writeTestKey(t, "hunter2")

	cfg := config.SSHConfig{
		Host: "bastion", Port: 22, User: "deploy",
		KeyPath: path, KeyPassphrase: "hunter2",
	}
	if _, err := NewTunnel(cfg, "db", 5432); err != nil {
		t.Fatalf("correct passphrase: %v", err)
	}

	cfg.KeyPassphrase = "wrong"
	_, err := NewTunnel(cfg, "db", 5432)
	authError(t, err)
}

func TestAddrString(t *testing.T) {
	a := Addr{Host: "127.0.0.1", Port: 54321}
	if got := a.String(); got != "127.0.0.1:54321" {
		t.Errorf("String() = %q", got)
	}
}
