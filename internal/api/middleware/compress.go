package middleware

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// DefaultCompressMinSize is the smallest response body that gets gzipped
const DefaultCompressMinSize = 1000

// Compress gzips responses of at least minSize bytes for clients that
// accept gzip
func Compress(minSize int) (func(http.Handler) http.Handler, error) {
	wrapper, err := gzhttp.NewWrapper(gzhttp.MinSize(minSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip middleware: %w", err)
	}
	return func(next http.Handler) http.Handler {
		return wrapper(next)
	}, nil
}
