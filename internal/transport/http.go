package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"share/internal/share"
)

// Share server endpoints, relative to the configured server URL.
const (
	UploadPath    = "/upload"
	CheckFilePath = "/check-file"
	DownloadPath  = "/download"
)

// endpoint joins a server base URL and an endpoint path.
func endpoint(serverURL, p string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("parsing server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("server url must be http or https: %q", serverURL)
	}
	return u.JoinPath(p).String(), nil
}

// HTTPUploader posts each file as multipart/form-data to the share server.
// Bodies are streamed, so files are never held in memory. No timeout is
// applied: a stalled request blocks until the server answers.
type HTTPUploader struct {
	client *http.Client
	url    string
}

var _ share.Uploader = (*HTTPUploader)(nil)

// NewHTTPUploader creates an uploader for serverURL. A nil client uses
// http.DefaultClient.
func NewHTTPUploader(serverURL string, client *http.Client) (*HTTPUploader, error) {
	u, err := endpoint(serverURL, UploadPath)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPUploader{client: client, url: u}, nil
}

// Upload sends one file. Only a 200 response counts as success; any other
// status is returned as *share.StatusError. The response body is drained
// and otherwise ignored.
func (u *HTTPUploader) Upload(ctx context.Context, req *share.UploadRequest) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeUploadForm(mw, req))
	}()
	// The form writer reads req.Content; it must be finished before we
	// return so the caller can move on to the next file.
	defer func() {
		pr.Close()
		<-done
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, pr)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &share.StatusError{Code: resp.StatusCode}
	}
	return nil
}

// writeUploadForm writes the file part and, for folder uploads, the
// relative path field.
func writeUploadForm(mw *multipart.Writer, req *share.UploadRequest) error {
	part, err := mw.CreateFormFile(share.FieldFile, req.Name)
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, req.Content); err != nil {
		return fmt.Errorf("writing file part: %w", err)
	}
	if req.RelativePath != "" {
		if err := mw.WriteField(share.FieldRelativePath, req.RelativePath); err != nil {
			return fmt.Errorf("writing relative path: %w", err)
		}
	}
	return mw.Close()
}

// HTTPServerClient talks to the download side of the share server.
type HTTPServerClient struct {
	client      *http.Client
	checkURL    string
	downloadURL string
}

var _ share.FileServer = (*HTTPServerClient)(nil)

// NewHTTPServerClient creates a client for serverURL. A nil client uses
// http.DefaultClient.
func NewHTTPServerClient(serverURL string, client *http.Client) (*HTTPServerClient, error) {
	checkURL, err := endpoint(serverURL, CheckFilePath)
	if err != nil {
		return nil, err
	}
	downloadURL, err := endpoint(serverURL, DownloadPath)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPServerClient{client: client, checkURL: checkURL, downloadURL: downloadURL}, nil
}

// CheckFile queries the availability endpoint and decodes its JSON answer.
func (c *HTTPServerClient) CheckFile(ctx context.Context) (*share.Availability, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.checkURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &share.StatusError{Code: resp.StatusCode}
	}

	var avail share.Availability
	if err := json.NewDecoder(resp.Body).Decode(&avail); err != nil {
		return nil, fmt.Errorf("decoding availability: %w", err)
	}
	return &avail, nil
}

// Download starts fetching the available file. The caller closes Body.
func (c *HTTPServerClient) Download(ctx context.Context) (*share.Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &share.StatusError{Code: resp.StatusCode}
	}

	return &share.Download{
		Name: attachmentName(resp.Header.Get("Content-Disposition")),
		Size: resp.ContentLength,
		Body: resp.Body,
	}, nil
}

// attachmentName extracts the filename from a Content-Disposition header.
// Servers sometimes send the name unquoted even when it contains spaces,
// which mime.ParseMediaType rejects, so that form is handled by hand.
func attachmentName(header string) string {
	if header == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(header); err == nil {
		return params["filename"]
	}
	_, after, found := strings.Cut(header, "filename=")
	if !found {
		return ""
	}
	if i := strings.Index(after, ";"); i >= 0 {
		after = after[:i]
	}
	return strings.Trim(strings.TrimSpace(after), `"`)
}
