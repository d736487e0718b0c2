package service

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(trackingID string) ([]byte, error)
}

// TrackingQRGenerator encodes the public tracking page link as a PNG.
type TrackingQRGenerator struct {
	BaseURL string
	Size    int
}

func (g TrackingQRGenerator) Link(trackingID string) string {
	return fmt.Sprintf("%s/#/track/%s", strings.TrimRight(g.BaseURL, "/"), trackingID)
}

func (g TrackingQRGenerator) Generate(trackingID string) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(g.Link(trackingID), qrcode.Medium, size)
}
