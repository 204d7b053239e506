package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-framer/pkg/caption"
	"github.com/menta2k/image-framer/pkg/render"
	"github.com/menta2k/image-framer/pkg/types"
	"github.com/menta2k/image-framer/pkg/units"
)

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"", "png", "PNG "} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, FormatPNG, f)
	}
	f, err := ParseFormat("webp")
	require.NoError(t, err)
	assert.Equal(t, "webp", f.Ext())

	_, err = ParseFormat("jpg")
	assert.Error(t, err)
}

func testPattern() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 30), uint8(y * 40), 90, 255})
		}
	}
	return img
}

func TestEncodeIsLossless(t *testing.T) {
	src := testPattern()

	data, err := EncodeBytes(src, FormatPNG)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), decoded.Bounds())
	assert.Equal(t, src.At(5, 4), color.RGBAModel.Convert(decoded.At(5, 4)))

	data, err = EncodeBytes(src, FormatWebP)
	require.NoError(t, err)
	decoded, err = webp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, src.At(7, 5), color.RGBAModel.Convert(decoded.At(7, 5)))

	assert.Error(t, Encode(&bytes.Buffer{}, src, Format("gif")))
}

func TestDirSaver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := NewDirSaver(dir)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a-framed.png", []byte("first")))
	require.NoError(t, s.Save(ctx, "a-framed.png", []byte("second")))

	data, err := os.ReadFile(filepath.Join(dir, "a-framed.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// Only the final file remains, no temp files
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Error(t, s.Save(ctx, "../escape.png", []byte("x")))
	assert.Error(t, s.Save(ctx, "", []byte("x")))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.Save(canceled, "b.png", []byte("x")), context.Canceled)
}

func TestExportWritesFramedPage(t *testing.T) {
	page := units.PageFromMM(30, 40)
	r := render.NewWithConfig(render.Config{Page: page, FontCache: caption.NewEmbeddedFontCache()})
	dir := t.TempDir()
	e := NewExporter(r, NewDirSaver(dir), Options{})

	src := types.NewSourceImage("sunset", testPattern())
	res, err := e.Export(context.Background(), types.DefaultFrameConfig().WithCaption("Hi"), Item{Name: "sunset", Source: src})
	require.NoError(t, err)

	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "sunset-framed.png", res.Output)

	f, err := os.Open(filepath.Join(dir, "sunset-framed.png"))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, page.Width, cfg.Width)
	assert.Equal(t, page.Height, cfg.Height)

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, info.Size(), res.Bytes)
}

func TestExportWebPName(t *testing.T) {
	var saved string
	saver := SaverFunc(func(_ context.Context, name string, _ []byte) error {
		saved = name
		return nil
	})
	e := NewExporter(&fakeRenderer{}, saver, Options{Format: FormatWebP, Suffix: "_print"})

	_, err := e.Export(context.Background(), types.DefaultFrameConfig(), makeItems("lake")[0])
	require.NoError(t, err)
	assert.Equal(t, "lake_print.webp", saved)
}

func TestReportWriteYAML(t *testing.T) {
	report := &Report{Total: 1}
	report.add(ItemResult{Name: "a", Output: "a-framed.png", Status: StatusOK, Bytes: 10})
	report.add(ItemResult{Index: 1, Name: "b", Status: StatusFailed, Error: "boom"})

	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, report.WriteYAML(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "output: a-framed.png")
	assert.Contains(t, string(data), "error: boom")
	assert.Equal(t, 1, report.OK)
	assert.Equal(t, 1, report.Failed)
}
