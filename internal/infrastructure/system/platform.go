package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/logger"

	"github.com/mitchellh/go-homedir"
)

var (
	_ output.SystemPort = (*Platform)(nil)
	_ output.FilePort   = (*Platform)(nil)
)

// Runner launches external programs. Start returns once the process is
// running; Run waits for it to exit.
type Runner interface {
	Start(ctx context.Context, name string, args ...string) error
	Run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Start(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

type Config struct {
	// GOOS defaults to the running platform.
	GOOS   string
	Runner Runner
	Logger output.LoggerPort
}

// Platform drives programs, windows, power state and files of the local
// machine.
type Platform struct {
	goos   string
	user   string
	runner Runner
	logger output.LoggerPort
}

func New(cfg Config) *Platform {
	if cfg.GOOS == "" {
		cfg.GOOS = runtime.GOOS
	}
	if cfg.Runner == nil {
		cfg.Runner = execRunner{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return &Platform{
		goos:   cfg.GOOS,
		user:   os.Getenv("USER"),
		runner: cfg.Runner,
		logger: cfg.Logger,
	}
}

func (p *Platform) StartProgram(ctx context.Context, name string) error {
	inv, err := p.startCommand(name)
	if err != nil {
		return err
	}
	return p.run(ctx, inv, true)
}

func (p *Platform) CloseProgram(ctx context.Context, name string) error {
	inv, err := p.closeCommand(name)
	if err != nil {
		return err
	}
	return p.run(ctx, inv, false)
}

func (p *Platform) MinimizeWindow(ctx context.Context, name string) error {
	inv, err := p.windowCommand(name, false)
	if err != nil {
		return err
	}
	return p.run(ctx, inv, false)
}

func (p *Platform) MaximizeWindow(ctx context.Context, name string) error {
	inv, err := p.windowCommand(name, true)
	if err != nil {
		return err
	}
	return p.run(ctx, inv, false)
}

func (p *Platform) Power(ctx context.Context, action entity.CommandAction) error {
	inv, err := p.powerCommand(action)
	if err != nil {
		return err
	}
	p.logger.Warn("Power action requested", "action", action)
	return p.run(ctx, inv, false)
}

func (p *Platform) Open(ctx context.Context, path string) error {
	path = p.expand(path)
	if _, err := os.Stat(path); err != nil {
		return err
	}
	inv, err := p.openCommand(path)
	if err != nil {
		return err
	}
	return p.run(ctx, inv, true)
}

// Create makes an empty file, or a directory when path ends with a
// separator. Missing parents are created and existing files are left alone.
func (p *Platform) Create(_ context.Context, path string) error {
	dir := strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator))
	path = p.expand(path)
	if dir {
		return os.MkdirAll(path, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// Delete removes a file or an empty directory.
func (p *Platform) Delete(_ context.Context, path string) error {
	return os.Remove(p.expand(path))
}

func (p *Platform) Copy(_ context.Context, src, dst string) error {
	src, dst = p.expand(src), p.expand(dst)
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	dst = intoDir(src, dst)
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode())
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, fi.Mode())
	})
}

func (p *Platform) Move(ctx context.Context, src, dst string) error {
	esrc, edst := p.expand(src), intoDir(p.expand(src), p.expand(dst))
	err := os.Rename(esrc, edst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return err
	}
	if err := p.Copy(ctx, src, dst); err != nil {
		return err
	}
	return os.RemoveAll(esrc)
}

// expand resolves a leading ~ and $VARS. A ~ that cannot be resolved is
// left as written.
func (p *Platform) expand(path string) string {
	path = os.ExpandEnv(strings.TrimSpace(path))
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}
	return filepath.Clean(path)
}

// intoDir places src inside dst when dst is an existing directory.
func intoDir(src, dst string) string {
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		return filepath.Join(dst, filepath.Base(src))
	}
	return dst
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && strings.Contains(linkErr.Err.Error(), "cross-device")
}
