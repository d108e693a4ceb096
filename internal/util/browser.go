package util

import (
	"fmt"
	"os/exec"
	"runtime"
)

// LocalURL 本机访问地址
func LocalURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}

// OpenBrowser 用系统默认浏览器打开 url，失败时依次尝试常见浏览器
func OpenBrowser(url string) error {
	var primary *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		primary = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		primary = exec.Command("open", url)
	default:
		primary = exec.Command("xdg-open", url)
	}
	err := primary.Start()
	if err == nil {
		return nil
	}

	for _, name := range fallbackBrowsers() {
		if exec.Command(name, url).Start() == nil {
			return nil
		}
	}
	return err
}

func fallbackBrowsers() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"explorer"}
	case "linux":
		return []string{"google-chrome", "firefox", "chromium-browser", "sensible-browser"}
	}
	return nil
}
