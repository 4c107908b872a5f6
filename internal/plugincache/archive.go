package plugincache

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// writeArchive packs each of paths into a tar.gz stream. Entries are
// stored under "<index>/" so readArchive can put them back at the paths
// the caller asks for. Missing paths are skipped.
func writeArchive(ctx context.Context, w io.Writer, paths []string) error {
	gzipWriter := gzip.NewWriter(w)
	tarWriter := tar.NewWriter(gzipWriter)

	for i, root := range paths {
		if _, err := os.Lstat(root); os.IsNotExist(err) {
			continue
		}
		prefix := strconv.Itoa(i)

		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			name := path.Join(prefix, filepath.ToSlash(rel))

			info, err := d.Info()
			if err != nil {
				return err
			}

			link := ""
			if info.Mode()&os.ModeSymlink != 0 {
				if link, err = os.Readlink(p); err != nil {
					return fmt.Errorf("read symlink %s: %w", p, err)
				}
			}

			header, err := tar.FileInfoHeader(info, link)
			if err != nil {
				return fmt.Errorf("tar header for %s: %w", p, err)
			}
			header.Name = name
			if info.IsDir() {
				header.Name += "/"
			}

			if err := tarWriter.WriteHeader(header); err != nil {
				return fmt.Errorf("write tar header %s: %w", name, err)
			}
			if !info.Mode().IsRegular() {
				return nil
			}

			f, err := os.Open(p)
			if err != nil {
				return fmt.Errorf("open %s: %w", p, err)
			}
			defer f.Close()

			if _, err := io.Copy(tarWriter, f); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("close tar writer: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("close gzip writer: %w", err)
	}
	return nil
}

// readArchive unpacks a stream written by writeArchive, sending entry
// "<i>/..." to paths[i]. Entries for indexes outside paths are ignored.
func readArchive(ctx context.Context, r io.Reader, paths []string) error {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		index, rel, _ := strings.Cut(strings.TrimSuffix(header.Name, "/"), "/")
		i, err := strconv.Atoi(index)
		if err != nil || i < 0 || i >= len(paths) {
			continue
		}

		destDir := filepath.Clean(paths[i])
		target := filepath.Join(destDir, filepath.FromSlash(rel))

		// Prevent path traversal
		if target != destDir && !strings.HasPrefix(target, destDir+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}

			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode).Perm())
			if err != nil {
				return fmt.Errorf("create file %s: %w", target, err)
			}
			if _, err := io.Copy(outFile, tarReader); err != nil {
				outFile.Close()
				return fmt.Errorf("write file %s: %w", target, err)
			}
			outFile.Close()

		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("create parent dir for %s: %w", target, err)
			}
			os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("create symlink %s: %w", target, err)
			}

		default:
			continue
		}
	}
}
