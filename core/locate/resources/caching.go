package resources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/npillmayer/mdstyle/core"
	"github.com/npillmayer/schuko/gconf"
)

// DownloadCachedFile will download a url to a local file (usually located in
// the user's cache directory). The file appears only after the download has
// completed.
func DownloadCachedFile(ctx context.Context, client *http.Client, fpath string, url string) error {
	resp, err := get(ctx, client, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	out, err := os.CreateTemp(filepath.Dir(fpath), ".download-*")
	if err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot create cache file")
	}
	defer os.Remove(out.Name())
	if _, err = io.Copy(out, io.LimitReader(resp.Body, maxEncodedBytes)); err != nil {
		out.Close()
		return core.WrapError(err, core.ECONNECTION, "download of %s failed", url)
	}
	if err = out.Close(); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot write cache file")
	}
	return os.Rename(out.Name(), fpath)
}

// CacheDirPath checks and possibly creates a folder in the user's cache
// directory. The base cache directory is taken from `os.UserCacheDir()`, plus
// an application specific key, taken as `app-key` from the global configuration.
// Clients may specify a sequence of folder names, which will be appended to
// the base cache path. Non-existing sub-folders will be created as necessary
// (with permissions 755).
func CacheDirPath(subfolders ...string) (string, error) {
	appkey := gconf.GetString("app-key")
	if appkey == "" {
		tracer().Errorf("application key is not set, using 'mdstyle'")
		appkey = "mdstyle"
	}
	cachedir, err := os.UserCacheDir()
	if err != nil {
		return "", core.WrapError(err, core.EMISSING, "no user cache directory")
	}
	cachedir = filepath.Join(cachedir, appkey, filepath.Join(subfolders...))
	tracer().Debugf("caching in %s", cachedir)
	if err = os.MkdirAll(cachedir, 0755); err != nil {
		return "", core.WrapError(err, core.EINTERNAL, "cannot create cache directory")
	}
	return cachedir, nil
}

// download returns the path of the cache file for u, downloading it if
// it is not yet cached.
func (l *ImageLoader) download(ctx context.Context, u *url.URL) (string, error) {
	dir, err := CacheDirPath("images")
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(u.String()))
	fpath := filepath.Join(dir, hex.EncodeToString(sum[:])+path.Ext(u.Path))
	if _, err = os.Stat(fpath); err == nil {
		tracer().Debugf("image %s found in download cache", u)
		return fpath, nil
	}
	if err = DownloadCachedFile(ctx, l.opts.Client, fpath, u.String()); err != nil {
		return "", err
	}
	return fpath, nil
}
