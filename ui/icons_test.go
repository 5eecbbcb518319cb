package ui

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/tailtray/tailtray/common"
)

func TestIconGenerator_Generate(t *testing.T) {
	for _, tt := range []struct {
		name   string
		config IconConfig
	}{
		{"connected", ConnectedIconConfig()},
		{"disconnected", DisconnectedIconConfig()},
	} {
		t.Run(tt.name, func(t *testing.T) {
			data := NewIconGenerator(tt.config).Generate()

			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("generated icon is not valid PNG: %v", err)
			}
			bounds := img.Bounds()
			if bounds.Dx() != common.TrayIconSize || bounds.Dy() != common.TrayIconSize {
				t.Errorf("icon is %dx%d, want %d", bounds.Dx(), bounds.Dy(), common.TrayIconSize)
			}
		})
	}
}

func TestIcons_StatesDiffer(t *testing.T) {
	if bytes.Equal(GenerateConnectedIcon(), GenerateDisconnectedIcon()) {
		t.Error("connected and disconnected icons must be distinguishable")
	}
}
