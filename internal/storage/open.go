package storage

import (
	"fmt"
	"regexp"
	"strings"

	logx "commander/pkg/logx"
)

var reCollection = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

func validName(collection string) error {
	if !reCollection.MatchString(collection) {
		return fmt.Errorf("%w: %q", ErrInvalidName, collection)
	}
	return nil
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.With(logx.String("comp", "storage"), logx.String("driver", driver))

	switch driver {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "memory", "none":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
