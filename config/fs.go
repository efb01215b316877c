//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const ceremonyHiddenFolderName = ".shamirs-secret"
const ceremonyFolderName = "ShamirsSecret"

// OutputFolderEnvVar names the environment variable consulted before
// falling back to the home or temp directory.
const OutputFolderEnvVar = "CEREMONY_OUTPUT_DIR"

// restrictedPaths lists system directories that must never be used as an
// output folder.
var restrictedPaths = []string{
	"/", "/etc", "/sys", "/proc", "/dev", "/bin", "/sbin",
	"/usr", "/lib", "/lib64", "/boot", "/root",
}

var (
	resolvedOnce sync.Once
	resolved     string
)

// ResolveOutputFolder determines the default output folder with the
// resolution order: CEREMONY_OUTPUT_DIR environment variable, then
// ~/ShamirsSecret, then /tmp/.shamirs-secret-$USER. The directory is
// created with mode 0700 if it does not already exist. The result is
// cached for the process lifetime.
func ResolveOutputFolder() string {
	resolvedOnce.Do(func() {
		if custom := os.Getenv(OutputFolderEnvVar); custom != "" {
			if err := validateOutputDirectory(custom); err == nil {
				if mkErr := os.MkdirAll(custom, 0700); mkErr == nil {
					resolved = custom
					return
				}
			}
		}

		if home, err := os.UserHomeDir(); err == nil {
			path := filepath.Join(home, ceremonyFolderName)
			if mkErr := os.MkdirAll(path, 0700); mkErr == nil {
				resolved = path
				return
			}
		}

		user := os.Getenv("USER")
		if user == "" {
			user = "ceremony"
		}
		path := filepath.Join(os.TempDir(), ceremonyHiddenFolderName+"-"+user)
		_ = os.MkdirAll(path, 0700)
		resolved = path
	})
	return resolved
}

// validateOutputDirectory rejects restricted and malformed paths before
// they are ever created or written to.
func validateOutputDirectory(dir string) error {
	if dir == "" {
		return fmt.Errorf("output directory path must not be empty")
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve output directory path: %w", err)
	}
	for _, restricted := range restrictedPaths {
		if restricted == "/" {
			if absPath == "/" {
				return fmt.Errorf("path is restricted for security reasons")
			}
			continue
		}
		if absPath == restricted || strings.HasPrefix(absPath, restricted+"/") {
			return fmt.Errorf("path is restricted for security reasons")
		}
	}
	return nil
}

// SessionFolder returns the exclusive write target for one ceremony
// session: <output_folder>/session_<sessionId>/. It does not create the
// directory; callers create it at session init.
func SessionFolder(outputFolder, sessionID string) string {
	return filepath.Join(outputFolder, "session_"+sessionID)
}
