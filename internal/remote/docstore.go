package remote

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Tiliavir/heatlog/internal/model"
)

// DocStore reads and writes the full record set as one JSON document in a
// version-controlled repository exposed through a contents API.
type DocStore struct {
	endpoint   string
	path       string
	branch     string
	httpClient *http.Client
}

// Document is the decoded remote file together with its version token.
// An empty Version means the file does not exist yet.
type Document struct {
	Records model.Records
	Version string
}

type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// NewDocStore creates a client for the document at path below endpoint.
func NewDocStore(ctx context.Context, endpoint, path, branch, credential string) *DocStore {
	return &DocStore{
		endpoint:   strings.TrimRight(endpoint, "/"),
		path:       strings.TrimLeft(path, "/"),
		branch:     branch,
		httpClient: NewHTTPClient(ctx, credential),
	}
}

func (d *DocStore) fileURL() string {
	segs := strings.Split(d.path, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return d.endpoint + "/" + strings.Join(segs, "/")
}

// Fetch returns the current document. A missing file is an empty document.
func (d *DocStore) Fetch(ctx context.Context) (Document, error) {
	u := d.fileURL()
	if d.branch != "" {
		u += "?ref=" + url.QueryEscape(d.branch)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Document{}, fmt.Errorf("creating request: %w", err)
	}
	body, err := do(d.httpClient, req)
	if IsNotFound(err) {
		return Document{Records: model.Records{}}, nil
	}
	if err != nil {
		return Document{}, err
	}

	var cr contentsResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return Document{}, &ParseError{What: "contents response", Err: err}
	}
	if cr.Encoding != "" && cr.Encoding != "base64" {
		return Document{}, &ParseError{What: "contents response", Err: fmt.Errorf("unsupported encoding %q", cr.Encoding)}
	}
	// The API wraps base64 payloads at 60 columns.
	raw, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(cr.Content), ""))
	if err != nil {
		return Document{}, &ParseError{What: "document content", Err: err}
	}
	rs := model.Records{}
	if len(strings.TrimSpace(string(raw))) > 0 {
		rs, err = model.DecodeRecords(raw)
		if err != nil {
			return Document{}, &ParseError{What: "document records", Err: err}
		}
	}
	return Document{Records: rs, Version: cr.SHA}, nil
}

// Put replaces the document, conditioned on version still being current.
// It returns the new version token, or ErrStaleVersion if another writer
// got there first.
func (d *DocStore) Put(ctx context.Context, rs model.Records, version, message string) (string, error) {
	data, err := model.EncodeRecords(rs)
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	req, err := newJSONRequest(ctx, http.MethodPut, d.fileURL(), putRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(data),
		SHA:     version,
		Branch:  d.branch,
	})
	if err != nil {
		return "", err
	}
	body, err := do(d.httpClient, req)
	if err != nil {
		if isConflict(err) {
			return "", fmt.Errorf("%w: %v", ErrStaleVersion, err)
		}
		return "", err
	}
	var pr putResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return "", &ParseError{What: "put response", Err: err}
	}
	return pr.Content.SHA, nil
}

// isConflict recognises the statuses a contents API uses for a stale sha.
func isConflict(err error) bool {
	var ne *NetworkError
	if !errors.As(err, &ne) {
		return false
	}
	switch ne.Status {
	case http.StatusConflict, http.StatusPreconditionFailed:
		return true
	case http.StatusUnprocessableEntity:
		return strings.Contains(strings.ToLower(ne.Msg), "sha")
	}
	return false
}
