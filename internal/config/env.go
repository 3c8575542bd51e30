package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of every environment variable read by ApplyEnv.
const EnvPrefix = "LOOPER_"

// ApplyEnv overrides settings of c from LOOPER_* environment variables:
//
//	LOOPER_LOG_LEVEL       log.level
//	LOOPER_SLEEP_MS        demo.sleep_ms
//	LOOPER_MODE            demo.mode
//	LOOPER_AUTO_RUN        demo.auto_run (comma separated)
//	LOOPER_DRAIN_ON_QUIT   dispatcher.drain_on_quit
//	LOOPER_LOCK_OS_THREAD  dispatcher.lock_os_thread
//
// The result is validated.
func ApplyEnv(c *Config) error {
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("SLEEP_MS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSLEEP_MS: %w", EnvPrefix, err)
		}
		c.Demo.SleepMS = n
	}
	if v, ok := lookup("MODE"); ok {
		c.Demo.Mode = v
	}
	if v, ok := lookup("AUTO_RUN"); ok {
		c.Demo.AutoRun = splitList(v)
	}
	if v, ok := lookup("DRAIN_ON_QUIT"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sDRAIN_ON_QUIT: %w", EnvPrefix, err)
		}
		c.Dispatcher.DrainOnQuit = b
	}
	if v, ok := lookup("LOCK_OS_THREAD"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLOCK_OS_THREAD: %w", EnvPrefix, err)
		}
		c.Dispatcher.LockOSThread = b
	}
	return c.Validate()
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	return strings.TrimSpace(v), ok
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
