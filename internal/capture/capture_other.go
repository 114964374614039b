//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

func runningOnWayland() bool { return false }

func openX11() (Source, error) {
	return nil, ErrUnsupported
}

func openPortal() (Source, error) {
	return nil, ErrUnsupported
}

func listWindows() ([]WindowInfo, error) {
	return nil, ErrUnsupported
}
