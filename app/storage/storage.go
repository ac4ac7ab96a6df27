// Package storage persists generated artifacts under stable keys. Keys are
// plain file names such as "deals.xml" or "deals-r4.json".
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

var ErrNotFound = errors.New("artifact not found")

type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// ContentType maps an artifact key to the MIME type it is published with.
func ContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".xml":
		return "application/rss+xml; charset=utf-8"
	case ".json":
		return "application/json; charset=utf-8"
	case ".html":
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, `/\`) && key != "." && key != ".."
}
