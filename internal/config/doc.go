// Package config provides configuration for the looper demo.
//
// Settings come from three layers, higher overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← LOOPER_*
//	├─────────────────────────────┤
//	│  2. TOML file               │  ← -config path
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Default()
//	└─────────────────────────────┘
//
// Command line flags are applied on top by cmd/looperdemo.
//
// # File format
//
//	[demo]
//	sleep_ms = 5000
//	mode = "view-post"
//	auto_run = ["run-on-ui-thread", "background-looper"]
//
//	[dispatcher]
//	drain_on_quit = true
//	lock_os_thread = false
//
//	[log]
//	level = "info"
//
// # Live reload
//
// Watcher observes the file with fsnotify and delivers freshly loaded
// configurations to a callback:
//
//	w, err := config.NewWatcher(path,
//	    config.WithOnChange(func(cfg *config.Config) { ... }),
//	    config.WithOnError(func(err error) { ... }),
//	)
//	defer w.Close()
package config
