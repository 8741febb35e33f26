package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yostat/yostat/internal/report"
)

// reportCache keeps parsed reports keyed by the sha256 of their bytes, so
// flipping a file between two versions does not parse twice. Reports are
// never mutated after parsing, so sharing them between builds is safe.
type reportCache struct {
	entries *lru.Cache[string, *report.Report]
}

// newReportCache returns nil when size is not positive; a nil cache misses.
func newReportCache(size int) (*reportCache, error) {
	if size <= 0 {
		return nil, nil
	}
	entries, err := lru.New[string, *report.Report](size)
	if err != nil {
		return nil, fmt.Errorf("report cache: %w", err)
	}
	return &reportCache{entries: entries}, nil
}

func (c *reportCache) Get(hash string) (*report.Report, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(hash)
}

func (c *reportCache) Put(hash string, rep *report.Report) {
	if c == nil {
		return
	}
	c.entries.Add(hash, rep)
}

func (c *reportCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// readAndHash reads the whole report; the bytes are reused for parsing.
func readAndHash(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, hashBytes(data), nil
}
