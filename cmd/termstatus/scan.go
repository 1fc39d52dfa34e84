package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"termstatus/statusline"
)

// Scanner hashes every regular file under its roots with a bounded worker
// pool, reporting all progress through the status line.
type Scanner struct {
	Status  *statusline.StatusLine
	Logger  *slog.Logger
	Workers int
	Roots   []string
}

// Run performs one full scan. Unreadable files are logged and skipped; only
// enumeration failures and context cancellation abort the scan.
func (s *Scanner) Run(ctx context.Context) error {
	files, err := s.enumerate()
	if err != nil {
		return err
	}
	s.Status.SetTotal(int64(len(files)))

	var hashedBytes atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			s.Status.AddWork(path)
			defer s.Status.RemoveWork(path)

			n, err := hashFile(path)
			if err != nil {
				s.Status.Warn("unreadable file", "path", path, "error", err)
				return nil
			}
			hashedBytes.Add(n)
			s.Status.IncrementCount()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	summary := fmt.Sprintf("hashed %d files, %s",
		len(files), humanize.Bytes(uint64(hashedBytes.Load())))
	return s.Status.PrintLine(summary).Wait()
}

// enumerate walks the roots collecting regular files.
func (s *Scanner) enumerate() ([]string, error) {
	var files []string
	for _, root := range s.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return files, nil
}

// hashFile returns the number of bytes digested.
func hashFile(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return n, fmt.Errorf("hashing %s: %w", path, err)
	}
	return n, nil
}
