package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sdaemon "github.com/coreos/go-systemd/v22/daemon"
	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"topicbot/internal/config"
	"topicbot/pkg/logx"
)

// sendPacing caps how often scheduled runs may fire, regardless of how
// aggressive the cron expression is.
const sendPacing = 30 * time.Second

var lookupEnv config.LookupFunc = os.LookupEnv

// RunSchedule keeps the process alive and runs the pipeline on the given
// cron schedule until ctx is cancelled. A failed run is logged and the next
// tick still fires; one-shot semantics are unchanged outside this mode.
//
// When cfgPath is non-empty, the file is watched and the configuration is
// re-read (environment still winning) on write events. Under systemd,
// readiness and watchdog notifications are emitted.
func (a *App) RunSchedule(ctx context.Context, spec, cfgPath string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", spec, err)
	}

	limiter := rate.NewLimiter(rate.Every(sendPacing), 1)

	var wg sync.WaitGroup
	c := cron.New(cron.WithParser(parser))
	c.Schedule(sched, cron.FuncJob(func() {
		if !limiter.Allow() {
			a.log.Warn("scheduled run skipped (pacing)", logx.Duration("min_interval", sendPacing))
			return
		}
		wg.Add(1)
		defer wg.Done()
		if err := a.RunOnce(ctx); err != nil {
			a.log.Error("scheduled run failed", logx.Err(err))
		}
	}))

	if cfgPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.watchConfig(ctx, cfgPath)
		}()
	}

	c.Start()
	a.log.Info("schedule started", logx.String("spec", spec))

	if sent, err := sdaemon.SdNotify(false, sdaemon.SdNotifyReady); err != nil {
		a.log.Warn("sd_notify failed", logx.Err(err))
	} else if sent {
		a.log.Debug("sd_notify: ready")
	}
	if interval, err := sdaemon.SdWatchdogEnabled(false); err == nil && interval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.watchdogLoop(ctx, interval/2)
		}()
	}

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	wg.Wait()
	a.log.Info("schedule stopped")
	return nil
}

func (a *App) watchdogLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = sdaemon.SdNotify(false, sdaemon.SdNotifyWatchdog)
		}
	}
}

// watchConfig reloads the config file on write events. Writes are debounced
// (editors often emit several events per save) and a parse failure keeps the
// current configuration.
func (a *App) watchConfig(ctx context.Context, path string) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		a.log.Warn("config watch unavailable", logx.Err(err))
		return
	}
	defer w.Close()

	// Watch the directory: editors replace the file on save, which drops a
	// watch registered on the file itself.
	if err := w.Add(filepath.Dir(path)); err != nil {
		a.log.Warn("config watch failed", logx.String("path", path), logx.Err(err))
		return
	}

	var mu sync.Mutex
	var timer *time.Timer
	reload := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, func() {
			cfg, err := config.Load(path, lookupEnv)
			if err != nil {
				a.log.Warn("config reload failed; keeping current config", logx.Err(err))
				return
			}
			if err := a.apply(cfg); err != nil {
				a.log.Warn("config apply failed; keeping current config", logx.Err(err))
				return
			}
			a.log.Info("config reloaded", logx.String("path", path))
		})
	}

	base := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				reload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			a.log.Warn("config watch error", logx.Err(err))
		}
	}
}
