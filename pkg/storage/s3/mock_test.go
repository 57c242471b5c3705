package s3

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeBucket is an in-memory S3 endpoint covering Head, Put and ListObjectsV2.
type fakeBucket struct {
	mu       sync.Mutex
	objects  map[string][]byte
	pageSize int
	failList bool
}

func newMockStore(t *testing.T, pageSize int) (*Store, *fakeBucket) {
	t.Helper()
	fb := &fakeBucket{objects: make(map[string][]byte), pageSize: pageSize}
	store, err := New(context.Background(), Config{
		Region:          "us-east-1",
		Bucket:          "mock-bucket",
		Endpoint:        "https://mock.s3.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		MaxDepth:        3,
		HTTPClient:      &http.Client{Transport: fb},
	})
	require.NoError(t, err)
	return store, fb
}

func (f *fakeBucket) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		if f.failList {
			return respond(http.StatusForbidden, nil, nil), nil
		}
		return f.listObjects(req), nil
	}
	switch req.Method {
	case http.MethodHead:
		body, ok := f.objects[key]
		if !ok {
			return respond(http.StatusNotFound, nil, nil), nil
		}
		return respond(http.StatusOK, nil, http.Header{
			"Content-Length": {strconv.Itoa(len(body))},
			"Last-Modified":  {time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat)},
			"ETag":           {"\"etag\""},
		}), nil
	case http.MethodPut:
		var body []byte
		if req.Body != nil {
			body, _ = io.ReadAll(req.Body)
		}
		f.objects[key] = body
		return respond(http.StatusOK, nil, http.Header{"ETag": {"\"etag\""}}), nil
	}
	return respond(http.StatusNotImplemented, nil, nil), nil
}

func (f *fakeBucket) listObjects(req *http.Request) *http.Response {
	q := req.URL.Query()
	prefix := q.Get("prefix")
	delimiter := q.Get("delimiter")
	maxKeys := f.pageSize
	if mk, err := strconv.Atoi(q.Get("max-keys")); err == nil && mk > 0 && (maxKeys == 0 || mk < maxKeys) {
		maxKeys = mk
	}

	type entry struct {
		key    string
		prefix bool
	}
	seen := map[string]bool{}
	var entries []entry
	for k := range f.objects {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := strings.TrimPrefix(k, prefix)
		if delimiter != "" && rest != "" {
			if idx := strings.Index(rest, delimiter); idx >= 0 {
				cp := prefix + rest[:idx+len(delimiter)]
				if !seen[cp] {
					seen[cp] = true
					entries = append(entries, entry{key: cp, prefix: true})
				}
				continue
			}
		}
		entries = append(entries, entry{key: k})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	start := 0
	if tok := q.Get("continuation-token"); tok != "" {
		start, _ = strconv.Atoi(tok)
	}
	end := len(entries)
	if maxKeys > 0 && start+maxKeys < end {
		end = start + maxKeys
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult>`)
	if end < len(entries) {
		fmt.Fprintf(&b, "<IsTruncated>true</IsTruncated><NextContinuationToken>%d</NextContinuationToken>", end)
	} else {
		b.WriteString("<IsTruncated>false</IsTruncated>")
	}
	for _, e := range entries[start:end] {
		if e.prefix {
			fmt.Fprintf(&b, "<CommonPrefixes><Prefix>%s</Prefix></CommonPrefixes>", html.EscapeString(e.key))
			continue
		}
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>",
			html.EscapeString(e.key), len(f.objects[e.key]))
	}
	b.WriteString("</ListBucketResult>")
	return respond(http.StatusOK, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}})
}

func respond(status int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(body)), Header: header}
}
