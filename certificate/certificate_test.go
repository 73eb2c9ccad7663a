package certificate

import (
	"bytes"
	"image/png"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateTimeline(t *testing.T) {
	passedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	at := AvailableAt(passedAt, DefaultDelay)

	assert.Equal(t, NotEligible, Gate(nil, passedAt))
	assert.Equal(t, Processing, Gate(&at, passedAt))
	assert.Equal(t, Processing, Gate(&at, passedAt.Add(47*time.Hour+59*time.Minute)))
	assert.Equal(t, Available, Gate(&at, passedAt.Add(48*time.Hour)))
	assert.Equal(t, Available, Gate(&at, passedAt.Add(48*time.Hour+time.Minute)))
}

func TestAvailableAtFallsBackToDefault(t *testing.T) {
	now := time.Now()
	assert.Equal(t, now.Add(DefaultDelay), AvailableAt(now, 0))
	assert.Equal(t, now.Add(time.Hour), AvailableAt(now, time.Hour))
}

func TestNewNumberFormat(t *testing.T) {
	re := regexp.MustCompile(`^ACAD-[0-9A-F]{8}$`)
	n := NewNumber("acad")
	assert.Regexp(t, re, n)
	assert.NotEqual(t, n, NewNumber("acad"))
	assert.True(t, strings.HasPrefix(NewNumber(""), DefaultPrefix+"-"))
}

func TestRenderHTMLDefaultTemplate(t *testing.T) {
	html, err := RenderHTML("", Data{
		Name:              "ada lovelace",
		ModuleTitle:       "Foundations",
		CertificateNumber: "CERT-ABCDEF12",
		Score:             88,
		IssuedAt:          time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Ada Lovelace")
	assert.Contains(t, html, "CERT-ABCDEF12")
	assert.Contains(t, html, "88%")
	assert.Contains(t, html, "June 2, 2024")
}

func TestRenderHTMLEscapesName(t *testing.T) {
	html, err := RenderHTML("<p>{{.Name}}</p>", Data{Name: "<script>x</script>"})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestValidateTemplate(t *testing.T) {
	assert.NoError(t, ValidateTemplate("<h1>{{.Name}}</h1>"))
	assert.Error(t, ValidateTemplate("<h1>{{.Name</h1>"))
	assert.Error(t, ValidateTemplate("<h1>{{.Missing}}</h1>"))
}

func TestRenderPNG(t *testing.T) {
	out, err := RenderPNG(Data{Name: "grace hopper", CertificateNumber: "CERT-00000001", Score: 90, IssuedAt: time.Now()})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, pngWidth, img.Bounds().Dx())
	assert.Equal(t, pngHeight, img.Bounds().Dy())
}
