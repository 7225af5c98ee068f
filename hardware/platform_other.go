//go:build !unix

package hardware

import (
	"fmt"
	"runtime"
)

// PlatformTag returns GOOS/GOARCH.
func PlatformTag() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
