package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// Archiver stores copies of imported and exported rate-card files under
// <prefix>/<kind>/<company>/<yyyy>/<mm>/<timestamp>_<filename>.
type Archiver struct {
	provider StorageProvider
	prefix   string
	now      func() time.Time
}

func NewArchiver(provider StorageProvider, prefix string) *Archiver {
	return &Archiver{provider: provider, prefix: strings.Trim(prefix, "/"), now: time.Now}
}

// Enabled reports whether a provider is configured.
func (a *Archiver) Enabled() bool {
	return a != nil && a.provider != nil
}

func (a *Archiver) Key(kind, companyID, filename string) string {
	ts := a.now().UTC()
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	return path.Join(a.prefix, kind, companyID, ts.Format("2006"), ts.Format("01"),
		fmt.Sprintf("%s_%s", ts.Format("20060102T150405Z"), name))
}

func (a *Archiver) Archive(ctx context.Context, kind, companyID, filename, contentType string, data []byte) (string, error) {
	if !a.Enabled() {
		return "", nil
	}

	key := a.Key(kind, companyID, filename)
	_, err := a.provider.Upload(ctx, &UploadRequest{
		Key:         key,
		Reader:      bytes.NewReader(data),
		ContentType: contentType,
		Size:        int64(len(data)),
		Metadata: map[string]string{
			"company-id": companyID,
			"kind":       kind,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", kind, err)
	}

	return key, nil
}
