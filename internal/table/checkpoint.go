package table

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/address-cli/internal/resilience"
)

// Checkpoint persists the whole working table after each batch. Writes go
// through a temp file in the same directory followed by a rename, so a crash
// mid-write leaves the previous snapshot intact. Transient filesystem errors
// are retried.
type Checkpoint struct {
	Path string

	log *zap.Logger
}

// NewCheckpoint creates a checkpoint writer for path.
func NewCheckpoint(path string, log *zap.Logger) *Checkpoint {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checkpoint{Path: path, log: log}
}

// Exists reports whether a checkpoint file is present.
func (c *Checkpoint) Exists() bool {
	_, err := os.Stat(c.Path)
	return err == nil
}

// Load reads the checkpoint table.
func (c *Checkpoint) Load() (*Table, error) {
	return Read(c.Path)
}

// Save atomically overwrites the checkpoint with the full table.
func (c *Checkpoint) Save(ctx context.Context, t *Table) error {
	cfg := resilience.FileWriteRetryConfig()
	cfg.OnRetry = resilience.RetryLogger(c.log, "checkpoint save")

	err := resilience.Do(ctx, cfg, func(ctx context.Context) error {
		tmp := c.Path + ".tmp"
		if err := Write(tmp, t); err != nil {
			os.Remove(tmp)
			return err
		}
		if err := os.Rename(tmp, c.Path); err != nil {
			os.Remove(tmp)
			return eris.Wrap(err, "table: rename checkpoint")
		}
		return nil
	})
	if err != nil {
		return eris.Wrapf(err, "table: save checkpoint %s", filepath.Base(c.Path))
	}

	c.log.Debug("checkpoint saved", zap.String("path", c.Path), zap.Int("rows", t.Len()))
	return nil
}
