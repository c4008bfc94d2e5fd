package cmd

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"

	"github.com/datacoves/dbt-coves/pkg/consts"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

const sshKeyName = "id_ed25519"

// setupSSH creates ~/.ssh/id_ed25519 and its .pub companion when no key
// exists and prints the public key so it can be registered with the git
// provider.
func setupSSH(_ context.Context, t *setupTask) error {
	home, err := t.home()
	if err != nil {
		return err
	}

	dir := filepath.Join(home, ".ssh")
	keyPath := filepath.Join(dir, sshKeyName)

	if _, err := os.Stat(keyPath); err == nil {
		t.console.Found("SSH key " + keyPath)
		if pub, err := os.ReadFile(keyPath + ".pub"); err == nil {
			t.console.Println(strings.TrimSpace(string(pub)))
		}
		return nil
	}

	comment := t.getenv(consts.EnvUserEmail)
	if comment == "" {
		comment = consts.AppName
	}

	private, public, err := generateSSHKey(comment)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}

	if err := os.WriteFile(keyPath, private, consts.ModePrivate); err != nil {
		return errors.Wrapf(err, "failed to write %s", keyPath)
	}

	if err := os.WriteFile(keyPath+".pub", public, consts.ModeFile); err != nil {
		return errors.Wrapf(err, "failed to write %s.pub", keyPath)
	}

	t.console.Row("SSH key "+keyPath, t.console.Success("CREATED ✓"))
	t.console.Println(strings.TrimSpace(string(public)))
	return nil
}

// generateSSHKey returns an OpenSSH encoded ed25519 private key and the
// matching authorized_keys line.
func generateSSHKey(comment string) ([]byte, []byte, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to generate ed25519 key")
	}

	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to encode private key")
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to encode public key")
	}

	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub))) + " " + comment + "\n"
	return pem.EncodeToMemory(block), []byte(line), nil
}
