// Package quick wraps a package-level default diagnostics logger for
// programs that want logging without carrying a Logger instance around.
// The default logger is created on first use with console output only;
// quick.Config adjusts it with "key=value" statements.
package quick

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/arguslabs/argus"
)

var (
	mu       sync.Mutex
	cfg      = &argus.Config{}
	instance *argus.Logger
	disabled bool
)

// logger returns the default logger, creating it on first use.
// A failed creation disables quick logging silently.
func logger() *argus.Logger {
	mu.Lock()
	defer mu.Unlock()
	return loggerLocked()
}

func loggerLocked() *argus.Logger {
	if instance != nil || disabled {
		return instance
	}
	l, err := argus.New(cfg)
	if err != nil {
		disabled = true
		return nil
	}
	instance = l
	return instance
}

// config applies configuration strings to the stored Config.
// Each argument should be in "key=value" format where key matches a Config
// toml tag, e.g. "level=debug" or "directory=./logs".
func config(args ...string) error {
	for _, arg := range args {
		key, value, err := parseKeyValue(arg)
		if err != nil {
			return fmt.Errorf("invalid config format: %s", arg)
		}
		if err := setValue(cfg, key, value); err != nil {
			return fmt.Errorf("config error: %s", err)
		}
	}
	return nil
}

// parseKeyValue splits a configuration string into key and value parts.
// Input format must be "key=value". Leading and trailing spaces are removed
// from both parts.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid format")
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// setValue updates a Config field using reflection. Field matching is
// case-insensitive against the toml tags. Returns an error if the field is
// unknown or the value cannot be converted to the required type.
func setValue(cfg *argus.Config, key, value string) error {
	key = strings.ToLower(key)

	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if tag := field.Tag.Get("toml"); tag != key {
			continue
		}
		f := v.Field(i)

		switch f.Kind() {
		case reflect.String:
			if key == "level" {
				if _, err := argus.ParseLevel(value); err != nil {
					return err
				}
				f.SetString(strings.ToLower(value))
			} else {
				f.SetString(value)
			}
		case reflect.Int:
			val, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid int value for %s: %s", key, value)
			}
			f.SetInt(int64(val))
		case reflect.Bool:
			val, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid bool value for %s: %s", key, value)
			}
			f.SetBool(val)
		default:
			return fmt.Errorf("unsupported config type for %s", key)
		}
		return nil
	}
	return fmt.Errorf("unknown config key: %s", key)
}
