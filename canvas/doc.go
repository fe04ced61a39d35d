// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package canvas draws 2D overlays with gg and moves the pixels to where
// the samples need them: a BGRA image for a quad texture, or a texture in
// a gogpu window.
//
// The data flow is:
//
//	gg.Context (draw) -> Pixmap (CPU) -> imageload.Image (BGRA) -> quad.Texture
//	gg.Context (draw) -> Pixmap (CPU) -> gpucontext.Texture -> Window
//
// # Usage
//
//	c, _ := canvas.New(512, 128)
//	defer c.Close()
//
//	_ = c.Draw(func(dc *gg.Context) {
//	    dc.SetRGB(1, 0, 0)
//	    dc.DrawCircle(256, 64, 50)
//	    _ = dc.Fill()
//	})
//	img, _ := c.Image()
//
// Uploads only happen when the canvas is dirty; Draw and Resize mark it.
//
// Canvas is NOT safe for concurrent use. Samples draw on the render
// thread only.
package canvas
