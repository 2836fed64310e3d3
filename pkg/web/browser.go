package web

import (
	"os"
	"os/exec"
	"runtime"

	"src.crevgui.dev/pkg/env"
)

// OpenBrowser opens a URL in the user's browser, without waiting for the
// browser to exit. The program named by $BROWSER is preferred over the
// platform default.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch {
	case os.Getenv(env.BROWSER) != "":
		cmd = exec.Command(os.Getenv(env.BROWSER), url)
	case runtime.GOOS == "darwin":
		cmd = exec.Command("open", url)
	case runtime.GOOS == "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
