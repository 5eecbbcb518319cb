// Package ui provides the graphical user interface for Tailtray.
// This file contains icon generation utilities for the system tray.
package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/tailtray/tailtray/common"
)

// IconConfig defines the configuration for icon generation. The icon
// is a three-by-three dot grid with the bottom row highlighted, dimmed
// when disconnected.
type IconConfig struct {
	Size      int
	DimColor  color.RGBA
	DotColor  color.RGBA
	Highlight color.RGBA
	Connected bool
}

// ConnectedIconConfig returns the config for the connected state.
func ConnectedIconConfig() IconConfig {
	return IconConfig{
		Size:      common.TrayIconSize,
		DimColor:  color.RGBA{70, 70, 70, 255},
		DotColor:  color.RGBA{255, 255, 255, 255},
		Highlight: color.RGBA{76, 175, 80, 255},
		Connected: true,
	}
}

// DisconnectedIconConfig returns the config for the disconnected state.
func DisconnectedIconConfig() IconConfig {
	return IconConfig{
		Size:      common.TrayIconSize,
		DimColor:  color.RGBA{70, 70, 70, 255},
		DotColor:  color.RGBA{158, 158, 158, 255},
		Highlight: color.RGBA{158, 158, 158, 255},
		Connected: false,
	}
}

// IconGenerator generates PNG icons for the system tray.
type IconGenerator struct {
	config IconConfig
}

// NewIconGenerator creates a new icon generator with the given config.
func NewIconGenerator(config IconConfig) *IconGenerator {
	return &IconGenerator{config: config}
}

// Generate creates a PNG icon and returns the bytes.
func (g *IconGenerator) Generate() []byte {
	size := g.config.Size
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	g.drawGrid(img)

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

// drawGrid draws the dot grid. The middle row carries the state: all
// three dots lit when connected, only the center when not.
func (g *IconGenerator) drawGrid(img *image.RGBA) {
	size := g.config.Size
	cell := float64(size) / 3
	radius := cell * 0.32

	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			cx := cell*float64(col) + cell/2
			cy := cell*float64(row) + cell/2

			c := g.config.DimColor
			if row == 1 {
				if g.config.Connected || col == 1 {
					c = g.config.DotColor
				}
				if g.config.Connected && col == 1 {
					c = g.config.Highlight
				}
			}
			drawDot(img, cx, cy, radius, c)
		}
	}
}

func drawDot(img *image.RGBA, cx, cy, radius float64, c color.RGBA) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, c)
			}
		}
	}
}

// GenerateConnectedIcon generates the connected state icon.
func GenerateConnectedIcon() []byte {
	return NewIconGenerator(ConnectedIconConfig()).Generate()
}

// GenerateDisconnectedIcon generates the disconnected state icon.
func GenerateDisconnectedIcon() []byte {
	return NewIconGenerator(DisconnectedIconConfig()).Generate()
}
