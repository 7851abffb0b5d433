package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

var ErrEmpty = errors.New("nothing to archive")

// Pack zips every regular file directly inside srcDir into dstPath. srcDir is
// removed afterwards whether or not packing succeeded, and a partially written
// archive is removed on failure.
func Pack(srcDir, dstPath string) (err error) {
	defer os.RemoveAll(srcDir)

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("read %s: %w", srcDir, err)
	}

	var files []os.DirEntry
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("%s: %w", srcDir, ErrEmpty)
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", dstPath, err)
	}
	defer func() {
		if err != nil {
			os.Remove(dstPath)
		}
	}()

	zw := zip.NewWriter(out)
	for _, e := range files {
		if err = addFile(zw, filepath.Join(srcDir, e.Name())); err != nil {
			zw.Close()
			out.Close()
			return err
		}
	}
	if err = zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finish %s: %w", dstPath, err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dstPath, err)
	}
	return nil
}

func addFile(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = filepath.Base(path)
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("add %s: %w", hdr.Name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write %s: %w", hdr.Name, err)
	}
	return nil
}
