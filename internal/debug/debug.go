package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/malonaz/qachat/internal/file"
)

var (
	mu     sync.Mutex
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// GetLogger returns the process-wide slog logger.
// It discards everything until Configure is called.
func GetLogger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Configure points the process-wide logger at the file at path.
func Configure(path string) error {
	path, err := file.ExpandPath(path)
	if err != nil {
		return errors.Wrap(err, "expanding debug log path")
	}
	if err := file.CreateParentDirectory(path); err != nil {
		return errors.Wrap(err, "creating debug log directory")
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return errors.Wrap(err, "opening debug log")
	}

	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}))
	return nil
}
