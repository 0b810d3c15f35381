package thumbnails

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// catalog is a files.Repository holding a fixed set of records.
type catalog struct {
	files.Repository
	mu    sync.Mutex
	items map[string]*models.File
}

func (c *catalog) GetOwned(_ context.Context, id, userID string) (*models.File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.items[id]
	if !ok || f.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *f
	return &cp, nil
}

func gradient(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, gradient(w, h)))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, gradient(w, h), nil))
	return buf.Bytes()
}

type fixture struct {
	store     *storage.FSStore
	catalog   *catalog
	processor *Processor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewFSStore(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)

	c := &catalog{items: map[string]*models.File{}}
	return &fixture{store: store, catalog: c, processor: NewProcessor(c, store, 0, 0)}
}

// addImage stores data and registers an image record for it.
func (f *fixture) addImage(t *testing.T, id, userID string, data []byte) *models.File {
	t.Helper()
	ref, err := f.store.Put(context.Background(), data)
	require.NoError(t, err)

	rec := &models.File{ID: id, UserID: userID, Name: id + ".img", Type: models.KindImage, StorageRef: ref}
	f.catalog.mu.Lock()
	f.catalog.items[id] = rec
	f.catalog.mu.Unlock()
	return rec
}

// pngHeaderOnly returns a 1x1 gray PNG whose IHDR claims w x h pixels.
// Only the header is consistent, which is all DecodeConfig reads.
func pngHeaderOnly(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()

	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func decodeConfig(t *testing.T, data []byte) (image.Config, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg, format
}
