package gfx

import "hash/fnv"

// RowHashes returns one FNV-1a hash per row, top to bottom. Only the visible
// bytes of each row are hashed so two bitmaps with different strides still
// agree on identical content. Equal rows always hash equal; different rows
// may collide, which callers tolerate.
func RowHashes(b *Bitmap) []uint32 {
	hashes := make([]uint32, b.Height())
	h := fnv.New32a()
	for y := range hashes {
		h.Reset()
		h.Write(b.Row(y))
		hashes[y] = h.Sum32()
	}
	return hashes
}
