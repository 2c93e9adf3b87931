package crawler

import (
	"os"
	"testing"

	"zipcheck-go/pkg/log"
)

func TestMain(m *testing.M) {
	log.Init("error", "console", "")
	os.Exit(m.Run())
}
