// Package ssh forwards a local TCP port to a remote database host through
// a bastion, so the driver connects to 127.0.0.1 and traffic rides the SSH
// session.
//
// Design decisions:
//   - Key-based authentication only; the key path and optional passphrase
//     come from the database's ssh config block.
//   - Host keys are verified against ~/.ssh/known_hosts when the file
//     exists; without it the bastion is accepted blindly.
//   - Failures carry an Op ("auth", "dial", "listen") so callers can fold
//     them into their own error taxonomy.
//   - The local listener binds port 0; Start returns the assigned address.
package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/askdb/askdb/applog"
	"github.com/askdb/askdb/config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Error is a classified tunnel failure.
type Error struct {
	Op  string // "auth", "dial", "listen"
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("ssh %s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// Addr is the local endpoint the database driver should connect to.
type Addr struct {
	Host string
	Port int
}

func (a Addr) String() string { return net.JoinHostPort(a.Host, strconv.Itoa(a.Port)) }

// Tunnel forwards connections on a local port to a target host through a
// bastion. Construct with NewTunnel, then Start and eventually Stop.
type Tunnel struct {
	user    string
	bastion string // "bastion:22"
	target  string // "db-host:5432"
	auth    []ssh.AuthMethod

	client   *ssh.Client
	listener net.Listener
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewTunnel validates the ssh config block and loads the private key. It
// does not connect; Start does.
func NewTunnel(cfg config.SSHConfig, dbHost string, dbPort int) (*Tunnel, error) {
	if cfg.KeyPath == "" {
		return nil, &Error{Op: "auth", Err: errors.New("ssh block needs key_path")}
	}
	signer, err := loadSigner(cfg.KeyPath, cfg.KeyPassphrase)
	if err != nil {
		return nil, &Error{Op: "auth", Err: err}
	}
	return &Tunnel{
		user:    cfg.User,
		bastion: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		target:  net.JoinHostPort(dbHost, strconv.Itoa(dbPort)),
		auth:    []ssh.AuthMethod{ssh.PublicKeys(signer)},
		done:    make(chan struct{}),
	}, nil
}

func loadSigner(path, passphrase string) (ssh.Signer, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key %s: %w", path, err)
	}
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(key, []byte(passphrase))
	}
	return ssh.ParsePrivateKey(key)
}

// hostKeyCallback checks the bastion against ~/.ssh/known_hosts when the
// file is readable. An unknown bastion then fails the handshake instead of
// prompting; without the file every host key is accepted.
func hostKeyCallback() ssh.HostKeyCallback {
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".ssh", "known_hosts")
		if cb, err := knownhosts.New(path); err == nil {
			return cb
		}
	}
	return ssh.InsecureIgnoreHostKey()
}

// Start dials the bastion under ctx, binds a local port, and begins
// forwarding. The returned address is where the driver should connect.
func (t *Tunnel) Start(ctx context.Context) (*Addr, error) {
	var d net.Dialer
	netConn, err := d.DialContext(ctx, "tcp", t.bastion)
	if err != nil {
		return nil, &Error{Op: "dial", Err: err}
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, t.bastion, &ssh.ClientConfig{
		User:            t.user,
		Auth:            t.auth,
		HostKeyCallback: hostKeyCallback(),
	})
	if err != nil {
		netConn.Close()
		return nil, &Error{Op: "auth", Err: err}
	}
	t.client = ssh.NewClient(sshConn, chans, reqs)

	t.listener, err = net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.client.Close()
		return nil, &Error{Op: "listen", Err: err}
	}
	local := &Addr{Host: "127.0.0.1", Port: t.listener.Addr().(*net.TCPAddr).Port}

	t.wg.Add(1)
	go t.serve()

	applog.Event("TUNNEL", "forwarding %s -> %s via %s", local, t.target, t.bastion)
	return local, nil
}

// Stop closes the listener and the SSH session. In-flight forwards end as
// their connections close.
func (t *Tunnel) Stop() {
	close(t.done)
	if t.listener != nil {
		t.listener.Close()
	}
	if t.client != nil {
		t.client.Close()
	}
	t.wg.Wait()
	applog.Event("TUNNEL", "closed forward to %s", t.target)
}

func (t *Tunnel) serve() {
	defer t.wg.Done()
	for {
		local, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				continue
			}
		}
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			t.forward(local)
		}()
	}
}

// forward opens the remote side through the SSH session and pumps bytes
// both ways until either end closes.
func (t *Tunnel) forward(local net.Conn) {
	defer local.Close()
	remote, err := t.client.Dial("tcp", t.target)
	if err != nil {
		applog.Error("ssh forward to %s: %v", t.target, err)
		return
	}

	done := make(chan struct{})
	go func() {
		io.Copy(remote, local) //nolint:errcheck
		remote.Close()
		close(done)
	}()
	io.Copy(local, remote) //nolint:errcheck
	local.Close()
	<-done
}
