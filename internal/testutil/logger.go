package testutil

import (
	"io"

	"github.com/dtroode/authkeeper/internal/logger"
)

func MakeNoopLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, 8)
}
