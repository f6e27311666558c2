package repository

import (
	"io"
	"modesta-resort-api/logger"
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter(io.Discard)
	os.Exit(m.Run())
}
