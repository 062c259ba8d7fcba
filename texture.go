package canvas2d

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
)

// bytesPerPixel is the RGBA8 texel size used for budget accounting.
const bytesPerPixel = 4

// textureRecord tracks one resident texture and the image it was made from.
type textureRecord struct {
	image    *Image
	id       TextureID
	width    int
	height   int
	isImage  bool
	isCanvas bool
	key      uint64 // creation order
	bytes    int64
	node     *lruNode[*textureRecord]
}

// evictable reports whether the record can be dropped and rebuilt from its
// source pixels later. Render-target textures hold GPU-only content.
func (r *textureRecord) evictable() bool {
	return r.isImage || r.isCanvas
}

// textureCost returns the bytes a w×h texture occupies once the GPU pads it
// to power-of-two dimensions.
func textureCost(w, h int) int64 {
	return int64(nextPowerOfTwo(w)) * int64(nextPowerOfTwo(h)) * bytesPerPixel
}

// TextureCache maps source images to GPU textures. Entries are kept in LRU
// order and evicted when resident bytes exceed the budget. An evicted image
// is flagged for upload and transparently rebuilt on its next draw.
//
// TextureCache is owned by a Manager and, like the rest of the engine, is
// not safe for concurrent use.
type TextureCache struct {
	dev      Device
	log      *slog.Logger
	stats    *FrameStats
	budget   int64
	resident int64
	nextKey  uint64
	records  map[*Image]*textureRecord
	lru      lruList[*textureRecord]

	// beforeRelease runs before a texture is deleted so queued quads that
	// still sample it can be drawn first.
	beforeRelease func()

	// beforeUpdate runs before a resident texture's pixels are replaced so
	// queued quads keep the pixels they were issued with.
	beforeUpdate func(TextureID)

	evictions int
}

func newTextureCache(dev Device, budget int64, log *slog.Logger, stats *FrameStats) *TextureCache {
	return &TextureCache{
		dev:     dev,
		log:     log,
		stats:   stats,
		budget:  budget,
		records: make(map[*Image]*textureRecord),
	}
}

// Texture returns the GPU texture for img, creating it on first use and
// re-uploading pixels when the image is flagged dirty. Every call marks the
// entry most recently used.
func (c *TextureCache) Texture(img *Image) (TextureID, error) {
	if img == nil || img.kind == ImageKindScreen {
		return 0, ErrNotDrawable
	}
	rec, ok := c.records[img]
	if !ok || rec.width != img.width || rec.height != img.height {
		if ok {
			c.remove(rec)
		}
		return c.createTexture(img)
	}
	c.lru.MoveToFront(rec.node)
	if img.needsUpload && img.hasPixels() {
		if c.beforeUpdate != nil {
			c.beforeUpdate(rec.id)
		}
		c.dev.UpdateTexture(rec.id, img.width, img.height, img.pix)
		img.needsUpload = false
		c.stats.Uploads++
	}
	return rec.id, nil
}

// createTexture allocates a texture for img, evicting older entries first if
// the budget requires it. Images with pixels are uploaded; render targets
// get empty storage.
func (c *TextureCache) createTexture(img *Image) (TextureID, error) {
	if img.width <= 0 || img.height <= 0 {
		return 0, fmt.Errorf("canvas2d: create texture %dx%d: %w", img.width, img.height, ErrEmptyImage)
	}
	c.addToByteCount(img.width, img.height)

	var pix []byte
	if img.hasPixels() {
		pix = img.pix
		c.stats.Uploads++
	}
	id := c.dev.CreateTexture(img.width, img.height, pix)
	img.needsUpload = false

	c.nextKey++
	rec := &textureRecord{
		image:    img,
		id:       id,
		width:    img.width,
		height:   img.height,
		isImage:  img.kind == ImageKindImage,
		isCanvas: img.kind == ImageKindCanvas,
		key:      c.nextKey,
		bytes:    textureCost(img.width, img.height),
	}
	rec.node = c.lru.PushFront(rec)
	c.records[img] = rec
	return id, nil
}

// addToByteCount charges a w×h texture against the budget and evicts least
// recently used image-backed entries while over budget. Render-target
// entries are moved to the front instead. At most half the current entries
// (minimum one) are visited per call, which bounds the cost of a single
// allocation.
func (c *TextureCache) addToByteCount(w, h int) {
	c.resident += textureCost(w, h)
	steps := max(1, c.lru.Len()/2)
	for i := 0; i < steps && c.resident > c.budget; i++ {
		node := c.lru.Back()
		if node == nil {
			break
		}
		rec := node.value
		if !rec.evictable() {
			c.lru.MoveToFront(node)
			continue
		}
		c.evict(rec)
	}
}

// evict drops rec and flags its image for re-upload.
func (c *TextureCache) evict(rec *textureRecord) {
	c.remove(rec)
	rec.image.needsUpload = true
	c.evictions++
	c.stats.Evictions++
	c.log.Debug("texture evicted",
		"width", rec.width, "height", rec.height,
		"bytes", rec.bytes, "resident", c.resident, "budget", c.budget)
}

// remove deletes the GPU texture and forgets the record.
func (c *TextureCache) remove(rec *textureRecord) {
	if c.beforeRelease != nil {
		c.beforeRelease()
	}
	c.dev.DeleteTexture(rec.id)
	c.resident -= rec.bytes
	c.lru.Remove(rec.node)
	delete(c.records, rec.image)
}

// Delete releases img's texture if resident. It reports whether an entry
// was removed.
func (c *TextureCache) Delete(img *Image) bool {
	rec, ok := c.records[img]
	if !ok {
		return false
	}
	c.remove(rec)
	return true
}

// reloadTextures rebuilds every image- and canvas-backed texture after the
// device context was restored. Old handles are not deleted: they died with
// the lost context. Render-target entries are dropped; their owners
// reallocate them.
func (c *TextureCache) reloadTextures() error {
	recs := make([]*textureRecord, 0, len(c.records))
	for _, rec := range c.records {
		if rec.evictable() {
			recs = append(recs, rec)
		}
	}
	slices.SortFunc(recs, func(a, b *textureRecord) int {
		return cmp.Compare(a.key, b.key)
	})

	c.lru.Clear()
	clear(c.records)
	c.resident = 0

	for _, rec := range recs {
		if _, err := c.createTexture(rec.image); err != nil {
			return err
		}
	}
	c.log.Info("textures reloaded", "count", len(recs), "resident", c.resident)
	return nil
}

// Lookup returns the texture currently resident for img without touching
// the LRU order.
func (c *TextureCache) Lookup(img *Image) (TextureID, bool) {
	rec, ok := c.records[img]
	if !ok {
		return 0, false
	}
	return rec.id, true
}

// ResidentBytes returns the padded byte size of all resident textures.
func (c *TextureCache) ResidentBytes() int64 { return c.resident }

// Budget returns the configured byte budget.
func (c *TextureCache) Budget() int64 { return c.budget }

// Len returns the number of resident textures.
func (c *TextureCache) Len() int { return len(c.records) }

// Evictions returns the total number of evictions since creation.
func (c *TextureCache) Evictions() int { return c.evictions }
