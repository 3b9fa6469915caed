package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PIPELINE_TEST_MODE") == "" {
			_ = os.Setenv("PIPELINE_TEST_MODE", "1")
		}
	})
}
