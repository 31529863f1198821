package host

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// DefaultMaxFileSize bounds module and descriptor files read from disk.
const DefaultMaxFileSize = 64 << 20

// SizeLimitExceededError is returned when a file is larger than the read limit.
type SizeLimitExceededError struct {
	Path  string
	Limit int64
}

func (e *SizeLimitExceededError) Error() string {
	return fmt.Sprintf("%s exceeds the %s size limit", e.Path, FormatSize(e.Limit))
}

// IsSizeLimitExceededError reports whether err is a SizeLimitExceededError.
func IsSizeLimitExceededError(err error) bool {
	var sizeErr *SizeLimitExceededError
	return errors.As(err, &sizeErr)
}

// ReadFileLimited reads path, failing if it holds more than limit bytes.
// A limit of zero or less uses DefaultMaxFileSize.
func ReadFileLimited(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// One byte past the limit tells an exact fit from an overflow.
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, &SizeLimitExceededError{Path: path, Limit: limit}
	}
	return data, nil
}

// FormatSize returns a human-readable size string.
func FormatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
