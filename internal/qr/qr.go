package qr

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Generator renders order tracking QR codes. The encoded payload is
// the public tracking URL for the order, so scanning it opens the
// storefront's status page.
type Generator struct {
	baseURL string
}

func NewGenerator(baseURL string) *Generator {
	return &Generator{baseURL: baseURL}
}

// TrackingPNG returns a PNG QR code for the order's tracking page.
func (g *Generator) TrackingPNG(orderID string) ([]byte, error) {
	url := fmt.Sprintf("%s/track/%s", g.baseURL, orderID)
	return qrcode.Encode(url, qrcode.Medium, 256)
}
