package application

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	// AppName is the application name used for directories and identification
	AppName = "github-cloner"

	// EnvPrefix prefixes every environment variable the tool reads
	EnvPrefix = "GITHUB_CLONER_"
)

// Version is overridden at build time with -ldflags "-X ...application.Version=..."
var Version = "0.4.0-dev"

var (
	once   sync.Once
	appDir string
	errDir error
)

// GetApplicationDirectory returns the per-user data directory.
// Linux: ~/.config/github-cloner (via os.UserConfigDir)
// Windows: C:\Users\{username}\AppData\Local\github-cloner (via os.UserCacheDir)
func GetApplicationDirectory() (string, error) {
	once.Do(lazyLoad)

	if errDir != nil {
		return "", errDir
	}

	return appDir, nil
}

func lazyLoad() {
	var (
		baseDir string
		err     error
	)

	switch runtime.GOOS {
	case "windows":
		baseDir, err = os.UserCacheDir()
	default:
		baseDir, err = os.UserConfigDir()
	}

	if err != nil {
		errDir = fmt.Errorf("failed to get config directory: %w", err)
		return
	}

	appDir = filepath.Join(baseDir, AppName)
}
