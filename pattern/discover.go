package pattern

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"haptics/pkg/errors"
)

// File 目录中找到的一个图案文件
type File struct {
	Key  string
	Name string
	Path string
}

// KeyFromFilename 取文件名第一个 "." 之前的部分作为 key
func KeyFromFilename(name string) string {
	if i := strings.Index(name, "."); i >= 0 {
		return name[:i]
	}
	return name
}

// Discover 列出目录下所有已登记扩展名的图案文件，按文件名排序，不递归子目录
func Discover(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapMissing(
				fmt.Errorf("%w: %s", errors.ErrPatternNotFound, dir), "pattern", "Discover")
		}
		return nil, errors.WrapMissing(err, "pattern", "Discover")
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, err := ParserFor(name); err != nil {
			continue
		}
		key := KeyFromFilename(name)
		if key == "" {
			continue
		}
		files = append(files, File{
			Key:  key,
			Name: name,
			Path: filepath.Join(dir, name),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
