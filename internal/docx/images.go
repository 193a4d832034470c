package docx

import (
	"archive/zip"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Known image extensions inside word/media. Anything else is saved with a
// .png suffix, matching the original content-type fallback.
var imageExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".tiff": {},
	".tif":  {},
	".emf":  {},
	".wmf":  {},
}

// saveImage copies one embedded image out of the container into the image
// directory under a random, collision-free name and returns the relative
// reference recorded in the tree. The write is a filesystem side channel:
// the returned Document only carries the path.
func (e *Extractor) saveImage(zr *zip.Reader, target string) (string, error) {
	entry := containerPath(target)
	data, err := readZipEntry(zr, entry)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(target))
	if _, ok := imageExts[ext]; !ok {
		ext = ".png"
	}

	dir := e.imagesDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return path.Join(filepath.ToSlash(dir), name), nil
}

// containerPath resolves a relationship target against the word/ part
// directory. Targets are usually relative ("media/image1.png"); absolute
// targets are anchored at the container root.
func containerPath(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean("word/" + target)
}
