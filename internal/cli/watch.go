package cli

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// debounce is how long watch waits for changes to settle.
const debounce = 300 * time.Millisecond

func watchCmd(a *App) *cobra.Command {
	var o Project
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the project file or the snapshot changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.watch(cmd.Context(), cmd, &o)
		},
	}
	projectFlags(cmd, &o)
	return cmd
}

// watch generates once, then again after every change to the project file
// or the snapshot until ctx is done. Failed runs are logged and watching
// continues.
func (a *App) watch(ctx context.Context, cmd *cobra.Command, o *Project) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	run := func() {
		p, err := a.project(cmd, o)
		if err != nil {
			a.Logger.Error("load project", "error", err)
			return
		}
		if _, err := a.generate(ctx, cmd.OutOrStdout(), io.Discard, p, false); err != nil {
			a.Logger.Error("generate", "error", err)
		}
	}
	run()

	watched := map[string]bool{}
	add := func(path string) error {
		if path == "" {
			return nil
		}
		// Editors replace files on save; watch the directory instead.
		dir := filepath.Dir(path)
		if watched[dir] {
			return nil
		}
		watched[dir] = true
		return w.Add(dir)
	}
	p, err := a.project(cmd, o)
	if err != nil {
		return err
	}
	for _, path := range []string{a.ConfigPath, p.Snapshot} {
		if err := add(path); err != nil {
			return err
		}
	}
	relevant := func(name string) bool {
		name = filepath.Clean(name)
		return name == filepath.Clean(a.ConfigPath) || (p.Snapshot != "" && name == filepath.Clean(p.Snapshot))
	}
	a.Logger.Info("watching", "config", a.ConfigPath, "snapshot", p.Snapshot)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev.Name) || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)) {
				continue
			}
			a.Logger.Debug("change", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.Logger.Error("watch", "error", err)
		case <-timerC:
			timerC = nil
			run()
		}
	}
}
