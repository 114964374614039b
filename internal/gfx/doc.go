// Package gfx holds the pixel buffers and image operations behind
// scrollshot: row hashing, overlap detection and stitching of scrolled
// captures, box blur, pixelation and Wu color quantization.
//
// Bitmaps store pixels blue first (BGR, BGRX or BGRA) with straight alpha,
// the layout GDI DIBs and X11 ZPixmaps hand back.
package gfx
