package wordpress

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"lampwright/internal/execx"
	"lampwright/internal/logger"
	"lampwright/internal/system"
)

const (
	archiveURL = "https://wordpress.org/latest.tar.gz"

	// minArchiveSize guards against truncated downloads; a WordPress
	// release tarball is well above 5MB.
	minArchiveSize = 5 * 1024 * 1024
)

// Installer downloads the latest WordPress release and deploys it into the
// web root.
type Installer struct {
	config *system.Config
	exec   execx.Executor
	logger logger.Logger
	client *http.Client

	// downloadURL and saltURL are overridable so tests can point at a
	// local server.
	downloadURL string
	saltURL     string
}

// NewInstaller creates a WordPress installer.
func NewInstaller(cfg *system.Config, exec execx.Executor, log logger.Logger) *Installer {
	client := &http.Client{
		Timeout: 300 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:       10,
			IdleConnTimeout:    90 * time.Second,
			DisableCompression: true,
		},
	}

	return &Installer{
		config:      cfg,
		exec:        exec,
		logger:      log,
		client:      client,
		downloadURL: archiveURL,
		saltURL:     saltEndpoint,
	}
}

// Install fetches the release archive, extracts it, and moves the tree into
// the configured web root.
func (i *Installer) Install() error {
	i.logger.Progress("Downloading WordPress")

	archivePath := filepath.Join(i.config.TmpDir, "wordpress-latest.tar.gz")
	if err := i.download(archivePath); err != nil {
		return errors.Wrap(err, "failed to download WordPress archive")
	}
	defer os.Remove(archivePath)

	i.logger.ProgressDone("Download")
	i.logger.Progress("Extracting WordPress")

	stageDir := filepath.Join(i.config.TmpDir, "wordpress-stage")
	os.RemoveAll(stageDir)
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create staging directory %s", stageDir)
	}
	defer os.RemoveAll(stageDir)

	if err := i.exec.Run("tar", "-xzf", archivePath, "-C", stageDir); err != nil {
		return errors.Wrap(err, "failed to extract WordPress archive")
	}

	extracted := filepath.Join(stageDir, "wordpress")
	if _, err := os.Stat(extracted); err != nil {
		return errors.Wrap(err, "archive did not contain a wordpress directory")
	}

	if err := i.deploy(extracted); err != nil {
		return err
	}

	i.logger.ProgressDone("WordPress")
	return nil
}

func (i *Installer) download(localPath string) error {
	resp, err := i.client.Get(i.downloadURL)
	if err != nil {
		return errors.Wrapf(err, "request failed: %s", i.downloadURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %d from %s", resp.StatusCode, i.downloadURL)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create download directory for %s", localPath)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create archive file %s", localPath)
	}

	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(localPath)
		return errors.Wrap(err, "failed to write archive file")
	}

	if written < minArchiveSize {
		os.Remove(localPath)
		return errors.Errorf("archive too small (%d bytes), download likely truncated", written)
	}

	return nil
}

// deploy moves the extracted tree into the web root and hands ownership to
// the web server user.
func (i *Installer) deploy(extractedDir string) error {
	webRoot := i.config.WebRoot

	if err := os.MkdirAll(webRoot, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create web root %s", webRoot)
	}

	if err := i.exec.Run("cp", "-a", extractedDir+"/.", webRoot); err != nil {
		return errors.Wrapf(err, "failed to copy WordPress into %s", webRoot)
	}

	if err := i.exec.Run("chown", "-R", "www-data:www-data", webRoot); err != nil {
		return errors.Wrapf(err, "failed to set ownership on %s", webRoot)
	}

	return nil
}
