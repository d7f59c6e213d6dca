package delivery

import (
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"github.com/smallbiznis/counterreport/internal/config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const sftpDialTimeout = 30 * time.Second

type sftpTransport struct {
	conn   *ssh.Client
	client *sftp.Client
}

// DialSFTP connects to the configured SFTP endpoint.
func DialSFTP(ctx context.Context, cfg config.DeliveryConfig) (Transport, error) {
	clientConfig, err := sshClientConfig(cfg)
	if err != nil {
		return nil, err
	}

	port := cfg.Port
	if port == 0 {
		port = 22
	}
	addr := net.JoinHostPort(cfg.Endpoint, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: sftpDialTimeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, clientConfig)
	if err != nil {
		netConn.Close()
		return nil, fmt.Errorf("ssh handshake %s: %w", addr, err)
	}
	conn := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("sftp session: %w", err)
	}
	return &sftpTransport{conn: conn, client: client}, nil
}

func sshClientConfig(cfg config.DeliveryConfig) (*ssh.ClientConfig, error) {
	if cfg.Endpoint == "" || cfg.User == "" {
		return nil, fmt.Errorf("sftp endpoint and user are required: %w", ErrInvalidDestination)
	}

	var auth []ssh.AuthMethod
	if cfg.PrivateKey != "" {
		signer, err := ssh.ParsePrivateKey([]byte(cfg.PrivateKey))
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("sftp password or private key is required: %w", ErrInvalidDestination)
	}

	hostKeyCallback, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	return &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         sftpDialTimeout,
	}, nil
}

// hostKeyCallback pins a base64 host key or falls back to a known_hosts file.
func hostKeyCallback(cfg config.DeliveryConfig) (ssh.HostKeyCallback, error) {
	if cfg.HostKey != "" {
		raw, err := base64.StdEncoding.DecodeString(cfg.HostKey)
		if err != nil {
			return nil, fmt.Errorf("decode host key: %w", err)
		}
		key, err := ssh.ParsePublicKey(raw)
		if err != nil {
			return nil, fmt.Errorf("parse host key: %w", err)
		}
		return ssh.FixedHostKey(key), nil
	}
	if cfg.KnownHostsFile != "" {
		if _, err := os.Stat(cfg.KnownHostsFile); err != nil {
			return nil, fmt.Errorf("known hosts file: %w", err)
		}
		return knownhosts.New(cfg.KnownHostsFile)
	}
	return nil, fmt.Errorf("sftp host key or known hosts file is required: %w", ErrInvalidDestination)
}

func (t *sftpTransport) Name() string { return config.TransportSFTP }

func (t *sftpTransport) Mkdir(_ context.Context, dir string) error {
	if info, err := t.client.Stat(dir); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory: %w", dir, ErrInvalidDestination)
		}
		return fmt.Errorf("%s: %w", dir, ErrDirectoryExists)
	}
	return t.client.MkdirAll(dir)
}

func (t *sftpTransport) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := t.client.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (t *sftpTransport) Close() error {
	err := t.client.Close()
	if cerr := t.conn.Close(); err == nil {
		err = cerr
	}
	return err
}
