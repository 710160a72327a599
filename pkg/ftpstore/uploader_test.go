package ftpstore

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igtracker/pkg/config"
	errs "igtracker/pkg/errors"
	"igtracker/pkg/logger"
)

type fakeConn struct {
	stored   map[string][]byte
	madeDirs []string
	storErr  error
	quits    int
}

func (c *fakeConn) Stor(path string, r io.Reader) error {
	if c.storErr != nil {
		return c.storErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if c.stored == nil {
		c.stored = make(map[string][]byte)
	}
	c.stored[path] = data
	return nil
}

func (c *fakeConn) MakeDir(path string) error {
	c.madeDirs = append(c.madeDirs, path)
	return nil
}

func (c *fakeConn) Quit() error {
	c.quits++
	return nil
}

func newTestUploader(conn *fakeConn, dialErr error) *Uploader {
	cfg := &config.FTPConfig{
		Host:      "media.example.com",
		Port:      21,
		User:      "uploader",
		Password:  "secret",
		RemoteDir: "posts",
		Timeout:   time.Second,
	}
	u := NewUploader(cfg, logger.NewTestLogger())
	u.dial = func(_ *config.FTPConfig) (ftpConn, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return conn, nil
	}
	return u
}

func imageServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestUploadFromSource(t *testing.T) {
	srv := imageServer(t, http.StatusOK, "jpeg-bytes")
	conn := &fakeConn{}
	uploader := newTestUploader(conn, nil)

	url, err := uploader.UploadFromSource(srv.URL+"/img.jpg", "ABC_1700000000.jpg")

	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/posts/ABC_1700000000.jpg", url)
	assert.Equal(t, []byte("jpeg-bytes"), conn.stored["posts/ABC_1700000000.jpg"])
	assert.Equal(t, 1, conn.quits, "connection closed after upload")
}

func TestUploadFromSourceFetchStatusError(t *testing.T) {
	srv := imageServer(t, http.StatusForbidden, "")
	uploader := newTestUploader(&fakeConn{}, nil)

	_, err := uploader.UploadFromSource(srv.URL+"/img.jpg", "name.jpg")

	require.Error(t, err)
	typed, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.ErrorTypeFetch, typed.Type)
	assert.Equal(t, http.StatusForbidden, typed.Code)
}

func TestUploadFromSourceFetchNetworkError(t *testing.T) {
	uploader := newTestUploader(&fakeConn{}, nil)

	_, err := uploader.UploadFromSource("http://127.0.0.1:1/img.jpg", "name.jpg")

	require.Error(t, err)
	typed, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.ErrorTypeFetch, typed.Type)
}

func TestUploadFromSourceDialError(t *testing.T) {
	srv := imageServer(t, http.StatusOK, "jpeg-bytes")
	uploader := newTestUploader(nil, errors.New("connection refused"))

	_, err := uploader.UploadFromSource(srv.URL+"/img.jpg", "name.jpg")

	require.Error(t, err)
	typed, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.ErrorTypeConnection, typed.Type)
}

func TestUploadFromSourceStorError(t *testing.T) {
	srv := imageServer(t, http.StatusOK, "jpeg-bytes")
	conn := &fakeConn{storErr: errors.New("550 permission denied")}
	uploader := newTestUploader(conn, nil)

	_, err := uploader.UploadFromSource(srv.URL+"/img.jpg", "name.jpg")

	require.Error(t, err)
	typed, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.ErrorTypeUpload, typed.Type)
	assert.Equal(t, 1, conn.quits, "connection closed on failure too")
}
