package sessions

import (
	"os"
	"testing"

	"gap_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}
