// Package fingerprint derives a stable pseudo-identifier for one listener
// from device/environment signals plus the server-observed IP. It is a soft
// heuristic used to deduplicate votes, not a security boundary.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"CalicoFM/logger"
)

// delimiter joins the signal slots. Not expected to appear inside a slot
// value.
const delimiter = "|"

// Collect reads every source independently, substituting the source's
// sentinel on failure. One bad probe never aborts the derivation.
func Collect(sources []Source) []string {
	parts := make([]string, 0, len(sources))
	for _, src := range sources {
		value, err := src.Read()
		if err != nil {
			logger.Debug("fingerprint signal unavailable",
				logger.String("signal", src.Name),
				logger.ErrorField(err))
			value = src.Sentinel
		}
		parts = append(parts, value)
	}
	return parts
}

// Digest joins the slots and hashes them into a fixed-length lowercase hex
// string. Equal inputs always produce equal digests.
func Digest(parts []string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, delimiter)))
	return hex.EncodeToString(sum[:])
}

// Derive runs the full collection and digest. Worst case every slot is a
// sentinel and the result is still a valid, deterministic digest.
func Derive(sources []Source) string {
	return Digest(Collect(sources))
}

// Generator derives a fingerprint once and caches it in a file. Subsequent
// calls return the cached value without probing or network I/O
// (first-write-wins).
type Generator struct {
	sources   []Source
	cacheFile string
}

// NewGenerator creates a generator caching at cacheFile. An empty cacheFile
// disables caching.
func NewGenerator(sources []Source, cacheFile string) *Generator {
	return &Generator{sources: sources, cacheFile: cacheFile}
}

// DefaultCachePath returns the per-user fingerprint cache location.
func DefaultCachePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "calicofm", "fingerprint")
}

// Fingerprint returns the cached fingerprint, deriving and persisting it on
// first use. Cache I/O failures are logged and the derived value is still
// returned.
func (g *Generator) Fingerprint() string {
	if g.cacheFile != "" {
		if raw, err := os.ReadFile(g.cacheFile); err == nil {
			if cached := strings.TrimSpace(string(raw)); cached != "" {
				return cached
			}
		}
	}

	fp := Derive(g.sources)

	if g.cacheFile != "" {
		if err := os.MkdirAll(filepath.Dir(g.cacheFile), 0755); err != nil {
			logger.Warn("failed to create fingerprint cache dir", logger.ErrorField(err))
			return fp
		}
		if err := os.WriteFile(g.cacheFile, []byte(fp), 0600); err != nil {
			logger.Warn("failed to persist fingerprint", logger.ErrorField(err))
		}
	}
	return fp
}
