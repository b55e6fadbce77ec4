package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cielang/cie/pkg/config"
	"github.com/cielang/cie/pkg/runtime"
)

// cmdWatch re-runs a program whenever its file changes. Editors often
// produce bursts of events per save, so changes are debounced.
func cmdWatch(args []string) int {
	f := parseArgs(args)
	if f.file == "" || f.file == "-" {
		fmt.Fprintln(os.Stderr, "usage: cie watch <file> [--config <path>]")
		return 1
	}

	cfg, code := loadConfig(f)
	if code != 0 {
		return code
	}
	pretty := usePretty(f, cfg)

	w := &watchRunner{file: f.file, cfg: cfg, pretty: pretty}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer fsw.Close()

	// Watch the directory rather than the file: many editors replace the
	// file on save, which drops a direct watch.
	dir := filepath.Dir(f.file)
	if err := fsw.Add(dir); err != nil {
		fmt.Fprintf(os.Stderr, "error watching %s: %v\n", dir, err)
		return 1
	}

	w.rerun()

	target, _ := filepath.Abs(f.file)
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return 0
			}
			name, _ := filepath.Abs(event.Name)
			if name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.schedule()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return 0
			}
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("watch error: %v", err)))
		}
	}
}

type watchRunner struct {
	file   string
	cfg    *config.Config
	pretty bool

	mu    sync.Mutex
	timer *time.Timer
}

func (w *watchRunner) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.cfg.Watch.Debounce, w.rerun)
}

func (w *watchRunner) rerun() {
	if w.cfg.Watch.ClearScreen {
		fmt.Print("\033[H\033[2J")
	}
	fmt.Println(statusStyle.Render(fmt.Sprintf("-- %s %s", w.file, time.Now().Format("15:04:05"))))

	source, err := os.ReadFile(w.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("cannot read %s: %v", w.file, err)))
		return
	}

	if _, runErr := runtime.New().Run(string(source), w.file); runErr != nil {
		reportError(runErr, w.pretty)
		return
	}
	fmt.Println(successStyle.Render("ok"))
}
