package local

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/adamavenir/tern/internal/core"
	"github.com/adamavenir/tern/internal/types"
	"github.com/peterbourgon/diskv/v3"
)

const attachmentPrefix = "att-"

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// attachmentStore keeps copies of attached files so messages stay readable
// after the original is moved. Keys are sharded by the first two characters
// of their random part.
type attachmentStore struct {
	base string
	d    *diskv.Diskv
}

func newAttachmentStore(base string) *attachmentStore {
	return &attachmentStore{
		base: base,
		d: diskv.New(diskv.Options{
			BasePath:     base,
			Transform:    shardKey,
			CacheSizeMax: 4 * 1024 * 1024,
		}),
	}
}

func shardKey(key string) []string {
	rest := key[len(attachmentPrefix):]
	if len(rest) < 2 {
		return nil
	}
	return []string{rest[:2]}
}

// Put copies the file at att.Path into the store.
func (s *attachmentStore) Put(att types.Attachment) (types.Attachment, error) {
	f, err := os.Open(att.Path)
	if err != nil {
		return types.Attachment{}, err
	}
	defer f.Close()

	name := att.Name
	if name == "" {
		name = filepath.Base(att.Path)
	}
	guid, err := core.GenerateGUID("att")
	if err != nil {
		return types.Attachment{}, err
	}
	key := fmt.Sprintf("%s_%s", guid, unsafeName.ReplaceAllString(name, "_"))
	if err := s.d.WriteStream(key, f, true); err != nil {
		return types.Attachment{}, err
	}
	return types.Attachment{Name: name, Path: s.path(key)}, nil
}

func (s *attachmentStore) path(key string) string {
	return filepath.Join(append(append([]string{s.base}, shardKey(key)...), key)...)
}
