package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/colinmarc/hdfs/v2"
	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Warehouse backends.
const (
	HDFSBackend  = "hdfs"
	FTPBackend   = "ftp"
	LocalBackend = "local"
)

var ErrBackendNotFound = errors.New("warehouse backend is not found")

type (
	// Local keeps warehouse files on an afero filesystem.
	Local struct {
		fs afero.Fs
	}

	// HDFS keeps warehouse files on a Hadoop cluster.
	HDFS struct {
		client *hdfs.Client
	}

	// HDFSOptions configures the HDFS backend.
	HDFSOptions struct {
		Addresses []string
		User      string
	}

	// FTPOptions configures the FTP backend.
	FTPOptions struct {
		Addr     string
		User     string
		Password string
		Timeout  time.Duration
	}

	// FTP keeps warehouse files on an FTP server, one connection per operation.
	FTP struct {
		opts FTPOptions
	}
)

// NewLocal roots the backend at root on the OS filesystem.
func NewLocal(root string) *Local {
	return &Local{fs: afero.NewBasePathFs(afero.NewOsFs(), root)}
}

// NewLocalFs uses fs as is.
func NewLocalFs(fs afero.Fs) *Local {
	return &Local{fs: fs}
}

func (l *Local) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := l.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return eris.Wrapf(err, "local: mkdir %s", path.Dir(name))
	}

	return eris.Wrapf(afero.WriteFile(l.fs, name, data, 0o644), "local: write %s", name)
}

func (l *Local) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(l.fs, name)
	if err != nil {
		return nil, eris.Wrapf(err, "local: read %s", name)
	}

	return data, nil
}

func (l *Local) Close() error {
	return nil
}

// NewHDFS connects to the configured namenodes.
func NewHDFS(opts HDFSOptions) (*HDFS, error) {
	client, err := hdfs.NewClient(hdfs.ClientOptions{
		Addresses: opts.Addresses,
		User:      opts.User,
	})
	if err != nil {
		return nil, eris.Wrap(err, "hdfs: connect")
	}

	return &HDFS{client: client}, nil
}

// WriteFile replaces any existing file at name.
func (h *HDFS) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := h.client.MkdirAll(path.Dir(name), 0o755); err != nil {
		return eris.Wrapf(err, "hdfs: mkdir %s", path.Dir(name))
	}

	if err := h.client.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return eris.Wrapf(err, "hdfs: remove %s", name)
	}

	w, err := h.client.Create(name)
	if err != nil {
		return eris.Wrapf(err, "hdfs: create %s", name)
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return eris.Wrapf(err, "hdfs: write %s", name)
	}

	return eris.Wrapf(w.Close(), "hdfs: close %s", name)
}

func (h *HDFS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := h.client.ReadFile(name)
	if err != nil {
		return nil, eris.Wrapf(err, "hdfs: read %s", name)
	}

	return data, nil
}

func (h *HDFS) Close() error {
	return h.client.Close()
}

// NewFTP applies default port, credentials and timeout.
func NewFTP(opts FTPOptions) *FTP {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	if opts.User == "" {
		opts.User = "anonymous"
		opts.Password = "anonymous@"
	}

	if !strings.Contains(opts.Addr, ":") {
		opts.Addr += ":21"
	}

	return &FTP{opts: opts}
}

func (f *FTP) connect(ctx context.Context) (*ftp.ServerConn, error) {
	zap.L().Debug("ftp: connecting", zap.String("addr", f.opts.Addr))

	conn, err := ftp.Dial(f.opts.Addr, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "ftp: dial")
	}

	if err := conn.Login(f.opts.User, f.opts.Password); err != nil {
		_ = conn.Quit()
		return nil, eris.Wrap(err, "ftp: login")
	}

	return conn, nil
}

// WriteFile creates missing directories and overwrites name.
func (f *FTP) WriteFile(ctx context.Context, name string, data []byte) error {
	conn, err := f.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Quit() //nolint:errcheck

	dir := ""
	for _, part := range strings.Split(strings.Trim(path.Dir(name), "/"), "/") {
		if part == "" {
			continue
		}
		dir += "/" + part
		// Existing directories fail with 550 and are left alone.
		_ = conn.MakeDir(dir)
	}

	if err := conn.Stor(name, bytes.NewReader(data)); err != nil {
		return eris.Wrapf(err, "ftp: store %s", name)
	}

	return nil
}

func (f *FTP) ReadFile(ctx context.Context, name string) ([]byte, error) {
	conn, err := f.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit() //nolint:errcheck

	resp, err := conn.Retr(name)
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: retrieve %s", name)
	}
	defer resp.Close() //nolint:errcheck

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: read %s", name)
	}

	return data, nil
}

func (f *FTP) Close() error {
	return nil
}
