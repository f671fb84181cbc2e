package policy

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay collapses the burst of events a single save produces.
const reloadDelay = 100 * time.Millisecond

// Watch reloads the policy whenever its file is written or created. It
// returns immediately; Close stops the watcher. A reload that fails keeps the
// previous settings.
func (p *Policy) Watch(ctx context.Context) error {
	if p.path == "" {
		return errors.New("no policy file to watch")
	}
	if p.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Editors replace files, so watch the directory rather than the file.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return err
	}

	p.watcher = watcher
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(ctx)
	return nil
}

func (p *Policy) run(ctx context.Context) {
	defer close(p.done)
	target := filepath.Clean(p.path)

	debounce := time.NewTimer(reloadDelay)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			debounce.Reset(reloadDelay)
		case <-debounce.C:
			if err := p.reload(); err != nil {
				p.logger.Warn("Policy reload skipped, keeping previous settings", "error", err)
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("Policy watcher error", "error", err)
		}
	}
}

func (p *Policy) Close() error {
	if p.watcher == nil {
		return nil
	}
	close(p.stop)
	<-p.done
	err := p.watcher.Close()
	p.watcher = nil
	return err
}
