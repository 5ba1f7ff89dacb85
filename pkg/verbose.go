package imgdupehash

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

var (
	verboseMu    sync.RWMutex
	verboseLevel int
	debugFlags   map[string]bool
)

// SetVerboseLevel sets the global verbose level (0=quiet .. 3=trace)
func SetVerboseLevel(level int) {
	verboseMu.Lock()
	verboseLevel = level
	verboseMu.Unlock()
}

// GetVerboseLevel returns the current verbose level
func GetVerboseLevel() int {
	verboseMu.RLock()
	defer verboseMu.RUnlock()
	return verboseLevel
}

// VerboseLog logs a message to stderr at the specified verbose level
func VerboseLog(level int, format string, args ...interface{}) {
	if GetVerboseLevel() < level {
		return
	}
	fmt.Fprintf(os.Stderr, "[VERBOSE-%d] ", level)
	fmt.Fprintf(os.Stderr, format, args...)
	if !strings.HasSuffix(format, "\n") {
		fmt.Fprintf(os.Stderr, "\n")
	}
}

// VerboseEnter logs function entry at level 3+ and returns a defer
// function for exit logging
func VerboseEnter() func() {
	if GetVerboseLevel() < 3 {
		return func() {}
	}

	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return func() {}
	}
	funcName := runtime.FuncForPC(pc).Name()
	if idx := strings.LastIndex(funcName, "."); idx != -1 {
		funcName = funcName[idx+1:]
	}

	fmt.Fprintf(os.Stderr, "[TRACE] Entering function: %s\n", funcName)
	return func() {
		fmt.Fprintf(os.Stderr, "[TRACE] Exiting function: %s\n", funcName)
	}
}

// SetDebugFlags sets the debug flags from a comma-separated string.
// Supports simple flags ("scan,cluster") and key:value format
// ("scan:true,cluster:off").
func SetDebugFlags(flagsStr string) {
	flags := make(map[string]bool)
	for _, flag := range strings.Split(flagsStr, ",") {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}

		parts := strings.SplitN(flag, ":", 2)
		name := strings.ToLower(parts[0])
		value := true
		if len(parts) > 1 {
			switch strings.ToLower(parts[1]) {
			case "false", "0", "no", "off":
				value = false
			}
		}
		flags[name] = value
	}

	verboseMu.Lock()
	debugFlags = flags
	verboseMu.Unlock()
}

// IsDebugEnabled returns true if the specified debug flag is enabled
func IsDebugEnabled(flag string) bool {
	verboseMu.RLock()
	defer verboseMu.RUnlock()
	if debugFlags == nil {
		return false
	}
	return debugFlags[strings.ToLower(flag)]
}
