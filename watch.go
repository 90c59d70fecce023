package main

import (
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"techsketch/internal/util"
)

// startConfigWatcher reloads the config whenever the file changes and hands
// the result to the running program. The returned func stops the watcher.
func startConfigWatcher(path string, logger *util.Logger, p *tea.Program) (func(), error) {
	full, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	full = filepath.Clean(full)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	if err := watcher.Add(filepath.Dir(full)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}
	go watchConfig(logger, watcher, full, func() {
		cfg, err := loadConfig(full)
		p.Send(configReloadMsg{cfg: cfg, err: err})
	})
	return func() { watcher.Close() }, nil
}

func watchConfig(logger *util.Logger, watcher *fsnotify.Watcher, target string, reload func()) {
	const debounceWindow = 250 * time.Millisecond
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(debounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			logger.Debugf("config file %s changed", target)
			reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("config watcher error: %v", err)
		}
	}
}
