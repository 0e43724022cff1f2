package recorder

import (
	"time"

	"github.com/yanun0323/errors"
)

// Config controls the journal writer.
type Config struct {
	Dir           string
	FilePrefix    string
	QueueSize     int
	FlushInterval time.Duration
}

// DefaultConfig returns a writer config for the given directory.
func DefaultConfig(dir string) Config {
	return Config{Dir: dir}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.FilePrefix == "" {
		c.FilePrefix = "journal"
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 4096
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = time.Second
	}
	return c
}

// Validate checks the config for obvious mistakes.
func (c Config) Validate() error {
	if c.Dir == "" {
		return errors.New("journal dir is empty")
	}
	return nil
}
