// Package ftpstore uploads post images to an FTP server and exposes them
// through the server's public HTTP root.
package ftpstore

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/jlaffaye/ftp"

	"igtracker/pkg/config"
	errs "igtracker/pkg/errors"
	"igtracker/pkg/logger"
)

// ftpConn is the subset of the FTP client the uploader uses
type ftpConn interface {
	Stor(path string, r io.Reader) error
	MakeDir(path string) error
	Quit() error
}

type dialFunc func(cfg *config.FTPConfig) (ftpConn, error)

func dialFTP(cfg *config.FTPConfig) (ftpConn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}
	if err := conn.Login(cfg.User, cfg.Password); err != nil {
		conn.Quit()
		return nil, err
	}
	return conn, nil
}

// Uploader copies images from their source URL to the FTP server. Each
// upload opens a fresh connection and closes it when done, so a stale
// control connection never poisons later uploads.
type Uploader struct {
	cfg        *config.FTPConfig
	httpClient *http.Client
	dial       dialFunc
	logger     logger.Logger
}

func NewUploader(cfg *config.FTPConfig, log logger.Logger) *Uploader {
	return &Uploader{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		dial:       dialFTP,
		logger:     log,
	}
}

// UploadFromSource downloads the image at sourceURL and stores it under the
// configured remote directory as destinationName. It returns the public URL
// the stored file is served at.
func (u *Uploader) UploadFromSource(sourceURL, destinationName string) (string, error) {
	resp, err := u.httpClient.Get(sourceURL)
	if err != nil {
		return "", errs.New(errs.ErrorTypeFetch, "failed to fetch image %s: %v", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errs.NewWithCode(errs.ErrorTypeFetch, resp.StatusCode,
			"image fetch returned status %d for %s", resp.StatusCode, sourceURL)
	}

	u.logger.DebugWithFields("fetched image", map[string]interface{}{
		"source_url":     sourceURL,
		"content_length": resp.ContentLength,
	})

	conn, err := u.dial(u.cfg)
	if err != nil {
		return "", errs.New(errs.ErrorTypeConnection, "failed to connect to FTP server %s: %v", u.cfg.Host, err)
	}
	defer conn.Quit()

	remotePath := path.Join(u.cfg.RemoteDir, destinationName)

	// The directory usually exists already
	if u.cfg.RemoteDir != "" {
		_ = conn.MakeDir(u.cfg.RemoteDir)
	}

	if err := conn.Stor(remotePath, resp.Body); err != nil {
		return "", errs.New(errs.ErrorTypeUpload, "failed to store %s: %v", remotePath, err)
	}

	publicURL := u.publicURL(destinationName)
	logger.LogUpload(sourceURL, remotePath, true, nil)
	return publicURL, nil
}

func (u *Uploader) publicURL(name string) string {
	return fmt.Sprintf("https://%s/%s", u.cfg.Host, path.Join(u.cfg.RemoteDir, name))
}
