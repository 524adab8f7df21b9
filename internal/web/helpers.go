package web

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
)

func itoa(value int) string {
	return strconv.Itoa(value)
}

func utoa(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func esc(value string) string {
	return templ.EscapeString(value)
}

// PageURL appends page and per_page to base, keeping any existing query.
func PageURL(base string, page, perPage int) string {
	if strings.Contains(base, "?") {
		return base + "&page=" + itoa(page) + "&per_page=" + itoa(perPage)
	}
	return base + "?page=" + itoa(page) + "&per_page=" + itoa(perPage)
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Format("2006-01-02 15:04")
}

var assetVersions sync.Map

// assetPath tags files under /static/ with a hash of their contents so
// browsers refetch them after a deploy. Hashes are computed once per process.
func assetPath(path string) string {
	name, ok := strings.CutPrefix(path, "/static/")
	if !ok || name == "" {
		return path
	}
	if version, ok := assetVersions.Load(name); ok {
		return appendAssetVersion(path, version.(string))
	}
	data, err := os.ReadFile(filepath.Join("static", name))
	if err != nil {
		return path
	}
	sum := sha256.Sum256(data)
	version := hex.EncodeToString(sum[:8])
	assetVersions.Store(name, version)
	return appendAssetVersion(path, version)
}

func appendAssetVersion(path string, hash string) string {
	if hash == "" {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&v=" + hash
	}
	return path + "?v=" + hash
}
