package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// jpegQuality is the fixed encoding quality for page bitmaps handed to OCR.
// Recognition accuracy is insensitive above ~80; smaller payloads matter more.
const jpegQuality = 85

// TesseractConfig tunes the local Tesseract engine.
type TesseractConfig struct {
	// Languages are tesseract trained-data hints, e.g. "eng", "deu".
	Languages []string
	// DPI is passed through as user_defined_dpi; zero leaves it unset.
	DPI int
}

// TesseractRecognizer runs local OCR through gosseract. A fresh client is
// created per page so no native state leaks across pipeline invocations.
type TesseractRecognizer struct {
	cfg           TesseractConfig
	clientFactory func() *gosseract.Client
}

// NewTesseractRecognizer builds a Tesseract-backed recognizer.
func NewTesseractRecognizer(cfg TesseractConfig) *TesseractRecognizer {
	return &TesseractRecognizer{cfg: cfg, clientFactory: gosseract.NewClient}
}

// RecognizePage encodes the page bitmap as JPEG and runs it through a
// dedicated Tesseract client.
func (r *TesseractRecognizer) RecognizePage(ctx context.Context, img image.Image, pageIndex int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := EncodeJPEG(img)
	if err != nil {
		return "", err
	}

	c := r.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(r.cfg.Languages) > 0 {
		if err := c.SetLanguage(r.cfg.Languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if r.cfg.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(r.cfg.DPI)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// EncodeJPEG renders a page bitmap into the portable encoding sent to
// recognition engines.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}
	return buf.Bytes(), nil
}
