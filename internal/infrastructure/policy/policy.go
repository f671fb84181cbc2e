package policy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var _ output.AuthorizationPort = (*Policy)(nil)

type Level string

const (
	LevelUnrestricted Level = "unrestricted"
	LevelModerate     Level = "moderate"
	LevelStrict       Level = "strict"
	LevelSafeMode     Level = "safe_mode"
)

const EnvPrefix = "DESKTOP_AGENT"

var (
	safeKinds       = []entity.CommandKind{entity.KindMouse, entity.KindKeyboard, entity.KindScreenshot}
	restrictedKinds = []entity.CommandKind{entity.KindSystem, entity.KindFile}
)

// Settings is one snapshot of the policy file. Action lists accept either a
// bare action ("delete") or a qualified one ("file/delete").
type Settings struct {
	Level               Level
	BlockedActions      []string
	RequireConfirmation []string
}

func DefaultSettings() Settings {
	return Settings{
		Level:               LevelModerate,
		RequireConfirmation: []string{"shutdown", "restart", "delete"},
	}
}

type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

type Policy struct {
	mu       sync.RWMutex
	settings Settings

	path    string
	confirm Confirmer
	logger  output.LoggerPort

	watcher *fsnotify.Watcher
	stop    chan struct{}
	done    chan struct{}
}

// Load reads path when it exists and applies DESKTOP_AGENT_* overrides. A
// missing file leaves the defaults in place. confirm may be nil, in which
// case actions that need confirmation are refused.
func Load(path string, confirm Confirmer, logger output.LoggerPort) (*Policy, error) {
	p := &Policy{path: path, confirm: confirm, logger: logger}
	s, err := p.read(true)
	if err != nil {
		return nil, err
	}
	p.apply(s)
	return p, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	defaults := DefaultSettings()
	v.SetDefault("level", string(defaults.Level))
	v.SetDefault("blocked_actions", defaults.BlockedActions)
	v.SetDefault("require_confirmation", defaults.RequireConfirmation)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func (p *Policy) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

func (p *Policy) IsAllowed(kind entity.CommandKind, action entity.CommandAction) bool {
	s := p.Settings()

	switch s.Level {
	case LevelSafeMode:
		if !slices.Contains(safeKinds, kind) {
			p.logger.Warn("Command outside safe mode", "kind", kind, "action", action)
			return false
		}
	case LevelStrict:
		if slices.Contains(restrictedKinds, kind) {
			p.logger.Warn("Command restricted by strict policy", "kind", kind, "action", action)
			return false
		}
	}

	if matches(s.BlockedActions, kind, action) {
		p.logger.Warn("Command blocked by policy", "kind", kind, "action", action)
		return false
	}

	if s.Level != LevelUnrestricted && matches(s.RequireConfirmation, kind, action) {
		return p.confirmed(kind, action)
	}
	return true
}

func (p *Policy) confirmed(kind entity.CommandKind, action entity.CommandAction) bool {
	if p.confirm == nil {
		p.logger.Warn("Command needs confirmation but no one can confirm", "kind", kind, "action", action)
		return false
	}
	ok, err := p.confirm.Confirm(context.Background(), fmt.Sprintf("Allow %s/%s?", kind, action))
	if err != nil {
		p.logger.Error("Confirmation failed", "error", err)
		return false
	}
	return ok
}

func matches(list []string, kind entity.CommandKind, action entity.CommandAction) bool {
	qualified := string(kind) + "/" + string(action)
	for _, item := range list {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == string(action) || item == qualified {
			return true
		}
	}
	return false
}

// reload rereads the file after a change. An empty or unreadable file is
// treated as a half-written save and leaves the current settings alone.
func (p *Policy) reload() error {
	s, err := p.read(false)
	if err != nil {
		return err
	}
	p.apply(s)
	return nil
}

// read builds settings from a fresh viper so a failed read never touches
// the live ones. allowEmpty lets a missing or empty file stand for defaults.
func (p *Policy) read(allowEmpty bool) (Settings, error) {
	v := newViper()
	if p.path != "" {
		info, err := os.Stat(p.path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			if !allowEmpty {
				return Settings{}, fmt.Errorf("policy file %s is gone", p.path)
			}
		case err != nil:
			return Settings{}, err
		case info.Size() == 0:
			if !allowEmpty {
				return Settings{}, fmt.Errorf("policy file %s is empty", p.path)
			}
		default:
			v.SetConfigFile(p.path)
			if err := v.ReadInConfig(); err != nil {
				return Settings{}, fmt.Errorf("failed to read policy file %s: %w", p.path, err)
			}
		}
	}

	s := Settings{
		Level:               Level(strings.ToLower(v.GetString("level"))),
		BlockedActions:      v.GetStringSlice("blocked_actions"),
		RequireConfirmation: v.GetStringSlice("require_confirmation"),
	}
	switch s.Level {
	case LevelUnrestricted, LevelModerate, LevelStrict, LevelSafeMode:
	default:
		return Settings{}, fmt.Errorf("unknown security level %q", s.Level)
	}
	return s, nil
}

func (p *Policy) apply(s Settings) {
	p.mu.Lock()
	p.settings = s
	p.mu.Unlock()

	p.logger.Info("Policy loaded", "level", s.Level, "blocked", len(s.BlockedActions), "confirm", len(s.RequireConfirmation))
}
