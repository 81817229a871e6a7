package views

import (
	"embed"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	StaticPrefix = "/static/"

	cacheControlImmutable   = "public, max-age=31536000, immutable"
	cacheControlRevalidated = "public, no-cache"
)

//go:embed static
var staticFS embed.FS

type (
	// Asset is one embedded static file with its content hash.
	Asset struct {
		Name        string
		ContentType string
		ETag        string
		Version     string
		Body        []byte
	}

	Assets struct {
		byName map[string]*Asset
	}
)

// LoadAssets reads every embedded static file once and hashes it.
func LoadAssets() (*Assets, error) {
	assets := &Assets{byName: make(map[string]*Asset)}

	err := fs.WalkDir(staticFS, "static", func(name string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}

		body, err := staticFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("reading asset %s: %w", name, err)
		}

		sum := xxhash.Sum64(body)
		rel := strings.TrimPrefix(name, "static/")

		contentType := mime.TypeByExtension(path.Ext(rel))
		if contentType == "" {
			contentType = http.DetectContentType(body)
		}

		assets.byName[rel] = &Asset{
			Name:        rel,
			ContentType: contentType,
			ETag:        fmt.Sprintf(`"%016x"`, sum),
			Version:     fmt.Sprintf("%08x", uint32(sum>>32)),
			Body:        body,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return assets, nil
}

func (a *Assets) Get(name string) (*Asset, bool) {
	asset, ok := a.byName[name]

	return asset, ok
}

// URL returns the cache-busting address of the named asset.
func (a *Assets) URL(name string) string {
	asset, ok := a.byName[name]
	if !ok {
		return StaticPrefix + name
	}

	return StaticPrefix + asset.Name + "?v=" + asset.Version
}

// ServeHTTP serves assets under StaticPrefix with strong ETags. Requests
// carrying the current version are cacheable forever.
func (a *Assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	asset, ok := a.Get(strings.TrimPrefix(r.URL.Path, StaticPrefix))
	if !ok {
		http.NotFound(w, r)

		return
	}

	w.Header().Set("ETag", asset.ETag)

	if r.URL.Query().Get("v") == asset.Version {
		w.Header().Set("Cache-Control", cacheControlImmutable)
	} else {
		w.Header().Set("Cache-Control", cacheControlRevalidated)
	}

	if etagMatches(r.Header.Get("If-None-Match"), asset.ETag) {
		w.WriteHeader(http.StatusNotModified)

		return
	}

	w.Header().Set("Content-Type", asset.ContentType)

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)

		return
	}

	_, _ = w.Write(asset.Body)
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}

	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}

	return false
}
