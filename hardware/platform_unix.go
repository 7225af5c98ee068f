//go:build unix

package hardware

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// PlatformTag returns GOOS/GOARCH and the kernel release.
func PlatformTag() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	}
	return fmt.Sprintf("%s/%s %s", runtime.GOOS, runtime.GOARCH, unix.ByteSliceToString(u.Release[:]))
}
