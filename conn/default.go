package conn

import (
	"errors"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

type defaultHolder struct{ c redis.UniversalClient }

var def atomic.Pointer[defaultHolder]

// SetDefault installs the process-wide client. Call it once from main.
// A previously installed client is returned so the caller can close it.
func SetDefault(c redis.UniversalClient) (prev redis.UniversalClient) {
	var h *defaultHolder
	if c != nil {
		h = &defaultHolder{c: c}
	}
	if old := def.Swap(h); old != nil {
		return old.c
	}
	return nil
}

// Default returns the process-wide client or nil when none is installed.
func Default() Executor {
	h := def.Load()
	if h == nil {
		return nil
	}
	return h.c
}

// CloseDefault closes and uninstalls the process-wide client.
// Safe to call when nothing is installed.
func CloseDefault() error {
	h := def.Swap(nil)
	if h == nil {
		return nil
	}
	if err := h.c.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
