package certificate

import (
	"bytes"
	"fmt"
	"html/template"
	"image/color"
	"strings"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Data struct {
	Name              string
	ModuleTitle       string
	CertificateNumber string
	Score             int
	IssuedAt          time.Time
}

// DefaultTemplate is used when no active template has been configured.
const DefaultTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Certificate {{.CertificateNumber}}</title></head>
<body style="font-family: Georgia, serif; text-align: center; padding: 60px; border: 12px double #00004D;">
  <h1 style="letter-spacing: 4px;">CERTIFICATE OF COMPLETION</h1>
  <p>This certifies that</p>
  <h2>{{.Name}}</h2>
  <p>has successfully completed{{if .ModuleTitle}} <strong>{{.ModuleTitle}}</strong>{{end}} with a score of {{.Score}}%.</p>
  <p>Issued {{.IssuedAt.Format "January 2, 2006"}}</p>
  <p style="font-size: 12px;">Certificate ID: {{.CertificateNumber}}</p>
</body>
</html>`

func displayName(name string) string {
	return cases.Title(language.English).String(strings.TrimSpace(name))
}

// RenderHTML executes tmpl (or DefaultTemplate when blank) against data.
func RenderHTML(tmpl string, data Data) (string, error) {
	if strings.TrimSpace(tmpl) == "" {
		tmpl = DefaultTemplate
	}
	t, err := template.New("certificate").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse certificate template: %w", err)
	}
	data.Name = displayName(data.Name)
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render certificate: %w", err)
	}
	return buf.String(), nil
}

// ValidateTemplate reports template syntax errors before a template is saved.
func ValidateTemplate(tmpl string) error {
	_, err := RenderHTML(tmpl, Data{Name: "Preview", CertificateNumber: "CERT-00000000", IssuedAt: time.Now()})
	return err
}

var (
	fontsOnce sync.Once
	fontsErr  error
	regular   *truetype.Font
	bold      *truetype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regular, fontsErr = truetype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		bold, fontsErr = truetype.Parse(gobold.TTF)
	})
	return fontsErr
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

const (
	pngWidth  = 1600
	pngHeight = 1131
)

// RenderPNG draws the certificate onto a landscape canvas.
func RenderPNG(data Data) ([]byte, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load certificate fonts: %w", err)
	}

	dc := gg.NewContext(pngWidth, pngHeight)
	dc.SetColor(color.White)
	dc.Clear()

	navy := color.NRGBA{R: 0x00, G: 0x00, B: 0x4D, A: 0xFF}
	gold := color.NRGBA{R: 0xD7, G: 0xB5, B: 0x6D, A: 0xFF}

	dc.SetColor(navy)
	dc.SetLineWidth(14)
	dc.DrawRectangle(30, 30, pngWidth-60, pngHeight-60)
	dc.Stroke()
	dc.SetColor(gold)
	dc.SetLineWidth(4)
	dc.DrawRectangle(60, 60, pngWidth-120, pngHeight-120)
	dc.Stroke()

	cx := float64(pngWidth) / 2

	dc.SetColor(navy)
	dc.SetFontFace(face(bold, 64))
	dc.DrawStringAnchored("CERTIFICATE OF COMPLETION", cx, 240, 0.5, 0.5)

	dc.SetFontFace(face(regular, 32))
	dc.DrawStringAnchored("This certifies that", cx, 360, 0.5, 0.5)

	dc.SetColor(gold)
	dc.SetFontFace(face(bold, 72))
	dc.DrawStringAnchored(displayName(data.Name), cx, 470, 0.5, 0.5)

	dc.SetColor(navy)
	dc.SetFontFace(face(regular, 32))
	line := fmt.Sprintf("has successfully completed the program with a score of %d%%", data.Score)
	if data.ModuleTitle != "" {
		line = fmt.Sprintf("has successfully completed %s with a score of %d%%", data.ModuleTitle, data.Score)
	}
	dc.DrawStringWrapped(line, cx, 600, 0.5, 0.5, pngWidth-320, 1.5, gg.AlignCenter)

	dc.SetFontFace(face(regular, 26))
	dc.DrawStringAnchored("Issued "+data.IssuedAt.Format("January 2, 2006"), cx, 800, 0.5, 0.5)
	dc.SetFontFace(face(regular, 22))
	dc.DrawStringAnchored("Certificate ID: "+data.CertificateNumber, cx, 960, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode certificate png: %w", err)
	}
	return buf.Bytes(), nil
}
