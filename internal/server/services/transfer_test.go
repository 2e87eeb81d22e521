package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestTransfer_RewritesHTMLImages(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	img := writeImage(t, dir, "logo.png", "png-bytes")

	in := `<p>intro</p><img src="` + img + `" alt="logo"><p>outro</p>`
	out, err := f.svc.Transfer(context.Background(), in)
	require.NoError(t, err)

	assert.NotContains(t, out, img)
	assert.Contains(t, out, `src="https://storage.test/files/uploads/`)
	assert.Contains(t, out, "<p>intro</p>")
	assert.Contains(t, out, "<p>outro</p>")
}

func TestTransfer_RewritesMarkdownImages(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	img := writeImage(t, dir, "chart.png", "chart-bytes")

	in := "see ![chart](" + img + ") above"
	out, err := f.svc.Transfer(context.Background(), in)
	require.NoError(t, err)

	assert.NotContains(t, out, img)
	assert.Contains(t, out, "![chart](https://storage.test/files/uploads/")
}

func TestTransfer_LeavesWebURLsAlone(t *testing.T) {
	f := newFixture(t)

	in := `<img src="https://cdn.example.com/a.png"> and ![b](http://example.com/b.png)`
	out, err := f.svc.Transfer(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestTransfer_DeduplicatesIdenticalImages(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	// same bytes under two names
	img1 := writeImage(t, dir, "one.png", "same-bytes")
	img2 := writeImage(t, dir, "two.png", "same-bytes")

	in := "![a](" + img1 + ") ![b](" + img2 + ")"
	out, err := f.svc.Transfer(context.Background(), in)
	require.NoError(t, err)

	// a single object stored, both references point at it
	require.Len(t, f.backend.objects, 1)
	urls := mdImgPattern.FindAllStringSubmatch(out, -1)
	require.Len(t, urls, 2)
	assert.Equal(t, urls[0][1], urls[1][1])
}

func TestTransfer_MissingFileFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Transfer(context.Background(), `<img src="/no/such/file.png">`)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no/such/file.png"))
}

func TestTransfer_NoImagesPassesThrough(t *testing.T) {
	f := newFixture(t)

	in := "plain text, [a link](https://example.com), no images"
	out, err := f.svc.Transfer(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
