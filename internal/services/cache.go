package services

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/source"
)

const cacheVersion = "v2"

type cachedRecords struct {
	Records  []models.SalesRecord
	StoredAt time.Time
}

// recordCache keeps parsed records of file sources on disk, keyed by path.
// An entry is stale once the file is modified after it was stored. A nil
// cache is valid and never hits.
type recordCache struct {
	dir string
}

func newRecordCache(dir string) *recordCache {
	if dir == "" {
		return nil
	}
	return &recordCache{dir: dir}
}

func (c *recordCache) filename(path string) string {
	name := strings.NewReplacer("/", "_", `\`, "_", ":", "_").Replace(path)
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (c *recordCache) lookup(src source.Source) ([]models.SalesRecord, bool) {
	if c == nil {
		return nil, false
	}
	file, ok := source.AsFile(src)
	if !ok {
		return nil, false
	}

	info, err := file.Stat()
	if err != nil {
		return nil, false
	}

	cached, err := c.load(file.Path)
	if err != nil || !info.ModTime().Before(cached.StoredAt) || len(cached.Records) == 0 {
		return nil, false
	}
	return cached.Records, true
}

func (c *recordCache) save(src source.Source, records []models.SalesRecord) error {
	if c == nil {
		return nil
	}
	file, ok := source.AsFile(src)
	if !ok {
		return nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(c.filename(file.Path))
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewEncoder(f).Encode(cachedRecords{Records: records, StoredAt: time.Now()})
}

func (c *recordCache) load(path string) (*cachedRecords, error) {
	f, err := os.Open(c.filename(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var data cachedRecords
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *recordCache) invalidate(src source.Source) {
	if c == nil {
		return
	}
	if file, ok := source.AsFile(src); ok {
		os.Remove(c.filename(file.Path))
	}
}
