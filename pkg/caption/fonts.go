package caption

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Embedded fallback families, always available.
const (
	FallbackFamily = "go"
	fallbackBold   = "go bold"
)

// maxFontScanDepth limits recursive directory traversal when scanning for fonts.
const maxFontScanDepth = 3

// maxFontFileSize limits the size of individual font files loaded into memory.
const maxFontFileSize = 20 << 20

// genericFamilies maps CSS generic family names to concrete candidates.
var genericFamilies = map[string][]string{
	"serif":      {"dejavu serif", "liberation serif", "times new roman", "georgia"},
	"sans-serif": {"dejavu sans", "liberation sans", "arial", "helvetica"},
	"monospace":  {"dejavu sans mono", "liberation mono", "courier new"},
}

// FontCache resolves font family names to parsed fonts. It scans the
// configured directories once, lazily, and always knows the embedded Go
// fonts so resolution never fails. Parsed fonts are shared; faces are not,
// since a font.Face is not safe for concurrent use.
type FontCache struct {
	mu      sync.RWMutex
	dirs    []string
	fonts   map[string]*opentype.Font // lowercase name -> parsed font
	scanned bool
}

// NewFontCache creates a FontCache that searches the OS font directories
// plus extraDirs.
func NewFontCache(extraDirs ...string) *FontCache {
	return newFontCache(append(systemFontDirs(), extraDirs...))
}

// NewEmbeddedFontCache creates a FontCache that only knows the embedded Go
// fonts and the given directories. Output does not depend on what is
// installed on the host.
func NewEmbeddedFontCache(dirs ...string) *FontCache {
	return newFontCache(dirs)
}

func newFontCache(dirs []string) *FontCache {
	fc := &FontCache{
		dirs:  dirs,
		fonts: make(map[string]*opentype.Font),
	}
	fc.mustRegister(FallbackFamily, goregular.TTF)
	fc.mustRegister(fallbackBold, gobold.TTF)
	return fc
}

func (fc *FontCache) mustRegister(name string, data []byte) {
	f, err := opentype.Parse(data)
	if err != nil {
		panic(fmt.Sprintf("caption: embedded font %s: %v", name, err))
	}
	fc.fonts[name] = f
}

// Resolve returns the font for a CSS-style family list such as
// "Georgia, serif". The first resolvable entry wins; when none resolves the
// embedded Go font is returned. The second result is the name that matched.
func (fc *FontCache) Resolve(family string, bold bool) (*opentype.Font, string) {
	fc.ensureScanned()

	fc.mu.RLock()
	defer fc.mu.RUnlock()

	for _, name := range splitFamilies(family) {
		if f := fc.findFont(name, bold); f != nil {
			return f, name
		}
		for _, candidate := range genericFamilies[name] {
			if f := fc.findFont(candidate, bold); f != nil {
				return f, candidate
			}
		}
	}

	if bold {
		return fc.fonts[fallbackBold], fallbackBold
	}
	return fc.fonts[FallbackFamily], FallbackFamily
}

// findFont looks up a parsed font by name, trying bold variants first.
// Callers must hold fc.mu.
func (fc *FontCache) findFont(lower string, bold bool) *opentype.Font {
	if bold {
		for _, suffix := range []string{" bold", "bd", "-bold", "b"} {
			if f, ok := fc.fonts[lower+suffix]; ok {
				return f
			}
		}
	}
	if f, ok := fc.fonts[lower]; ok {
		return f
	}
	return nil
}

// LoadFont loads a TrueType/OpenType file and registers it under name.
func (fc *FontCache) LoadFont(name, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > maxFontFileSize {
		return fmt.Errorf("font file too large: %d bytes (max %d)", info.Size(), maxFontFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return fc.LoadFontData(name, data)
}

// LoadFontData registers a TrueType/OpenType font from raw bytes.
func (fc *FontCache) LoadFontData(name string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font %s: %w", name, err)
	}
	fc.mu.Lock()
	fc.fonts[strings.ToLower(name)] = f
	fc.registerByFamilyName(f)
	fc.mu.Unlock()
	return nil
}

func (fc *FontCache) ensureScanned() {
	fc.mu.RLock()
	scanned := fc.scanned
	fc.mu.RUnlock()
	if scanned {
		return
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.scanned {
		return
	}
	fc.scanned = true

	for _, dir := range fc.dirs {
		fc.scanDirDepth(dir, 0)
	}
}

func (fc *FontCache) scanDirDepth(dir string, depth int) {
	if depth > maxFontScanDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			fc.scanDirDepth(filepath.Join(dir, entry.Name()), depth+1)
			continue
		}
		lower := strings.ToLower(entry.Name())
		isCollection := strings.HasSuffix(lower, ".ttc") || strings.HasSuffix(lower, ".otc")
		isSingle := strings.HasSuffix(lower, ".ttf") || strings.HasSuffix(lower, ".otf")
		if !isCollection && !isSingle {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.Size() > maxFontFileSize {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}

		if isCollection {
			fc.loadCollection(data)
			continue
		}
		f, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		fc.fonts[strings.TrimSuffix(lower, filepath.Ext(lower))] = f
		fc.registerByFamilyName(f)
	}
}

func (fc *FontCache) loadCollection(data []byte) {
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return
	}
	for i := 0; i < coll.NumFonts(); i++ {
		f, err := coll.Font(i)
		if err != nil {
			continue
		}
		fc.registerByFamilyName(f)
	}
}

// registerByFamilyName registers f under its family and full names. The
// family name only claims an empty slot so a bold face scanned first does
// not shadow the regular one.
func (fc *FontCache) registerByFamilyName(f *opentype.Font) {
	if family, err := f.Name(nil, sfnt.NameIDFamily); err == nil && family != "" {
		key := strings.ToLower(family)
		if _, taken := fc.fonts[key]; !taken {
			fc.fonts[key] = f
		}
	}
	if full, err := f.Name(nil, sfnt.NameIDFull); err == nil && full != "" {
		fc.fonts[strings.ToLower(full)] = f
	}
}

func splitFamilies(family string) []string {
	var out []string
	for _, part := range strings.Split(family, ",") {
		name := strings.ToLower(strings.Trim(strings.TrimSpace(part), `"'`))
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// systemFontDirs returns OS-specific font directories.
func systemFontDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		dirs := []string{filepath.Join(windir, "Fonts")}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		dirs := []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
		return dirs
	default:
		dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".local", "share", "fonts"), filepath.Join(home, ".fonts"))
		}
		return dirs
	}
}
