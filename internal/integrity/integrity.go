// Package integrity verifies bridge scripts bundled for container
// injection against a SHA-256 sidecar (§6 "Bridge script integrity").
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

// VerifyBridgeScriptIntegrity returns true iff path's `.sha256` sidecar
// matches the file's actual digest, or the sidecar is absent. It returns
// false only when the sidecar exists and disagrees (trailing whitespace in
// the sidecar is tolerated).
func VerifyBridgeScriptIntegrity(path string) bool {
	sidecarPath := path + ".sha256"

	expected, err := os.ReadFile(sidecarPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true
		}
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false
	}

	actual := hex.EncodeToString(h.Sum(nil))
	return strings.TrimSpace(string(expected)) == actual
}
