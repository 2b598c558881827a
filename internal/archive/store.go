// Package archive reads the date-partitioned traffic sensor archive.
//
// The archive root contains one directory per district, each district one
// directory per year, and each year one directory per date. Sample files
// for a date may be loose inside the date directory, members of a sibling
// ZIP bundle named <date>.traffic, or both; listings merge the two sources
// and reads fall back from the loose file to the bundle member.
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/mnit-rtmc/trafdat/internal/dates"
	"github.com/mnit-rtmc/trafdat/internal/log"
	"github.com/mnit-rtmc/trafdat/internal/sample"
	"github.com/rs/zerolog"
)

// BundleExt is the archive bundle file suffix.
const BundleExt = ".traffic"

// Store provides read access to one traffic archive root. The zero value
// is not usable; construct with New. A Store holds no open handles between
// calls and is safe for concurrent use.
type Store struct {
	root   string
	logger zerolog.Logger
}

// New returns a Store reading from the given archive root.
func New(root string) *Store {
	return &Store{root: root, logger: log.WithComponent("archive")}
}

// Districts lists the district directories under the archive root.
func (s *Store) Districts() []string {
	return ListDir(s.root, CheckDir)
}

// Dates lists the dates archived for a district and year, merging date
// directories and .traffic bundles. The result is sorted ascending and
// deduplicated; year is validated by the caller.
func (s *Store) Dates(district, year string) []string {
	list := ListDir(filepath.Join(s.root, district, year), CheckDate)
	if len(list) == 0 {
		return nil
	}
	sort.Strings(list)
	out := list[:1]
	for _, d := range list[1:] {
		if d != out[len(out)-1] {
			out = append(out, d)
		}
	}
	return out
}

// dateDir builds the path of the date directory for a valid date.
func (s *Store) dateDir(district, date string) string {
	return filepath.Join(s.root, district, date[:4], date)
}

// bundlePath builds the path of the archive bundle for a valid date.
func (s *Store) bundlePath(district, date string) string {
	return s.dateDir(district, date) + BundleExt
}

// Sensors lists the sensor ids with sample files on a date, merging loose
// files and bundle members.
func (s *Store) Sensors(district, date string) []string {
	if !dates.IsValidDate(date) {
		return nil
	}
	sids := ListDir(s.dateDir(district, date), CheckSid)
	return append(sids, ListBundle(s.bundlePath(district, date), CheckSid)...)
}

// Extensions lists the sample extensions recorded for one sensor on a
// date, merging loose files and bundle members.
func (s *Store) Extensions(district, date, sid string) []string {
	if !dates.IsValidDate(date) {
		return nil
	}
	check := CheckExt(sid)
	exts := ListDir(s.dateDir(district, date), check)
	return append(exts, ListBundle(s.bundlePath(district, date), check)...)
}

// ReadSample returns the raw bytes of one sample file. The loose file is
// preferred; the sibling bundle is searched for a member of the same name
// only when no loose file can be opened. A loose file or member whose
// length disagrees with the extension grammar is treated as absent. The
// second return is false when no well-formed sample was found.
func (s *Store) ReadSample(district, date, sid, ext string) ([]byte, bool) {
	if !dates.IsValidDate(date) || !sample.IsValidExt(ext) {
		return nil, false
	}
	name := sid + "." + ext
	f, err := os.Open(filepath.Join(s.dateDir(district, date), name))
	if err != nil {
		return s.readMember(s.bundlePath(district, date), name, ext)
	}
	defer f.Close()
	return s.readLoose(f, ext)
}

// readLoose reads an open loose sample file, verifying its length first.
func (s *Store) readLoose(f *os.File, ext string) ([]byte, bool) {
	fi, err := f.Stat()
	if err != nil || !sample.IsValidLen(ext, fi.Size()) {
		return nil, false
	}
	data := make([]byte, fi.Size())
	if _, err := io.ReadFull(f, data); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event", "sample.read_failed").
			Str("path", f.Name()).
			Msg("short read on sample file")
		return nil, false
	}
	return data, true
}

// readMember extracts one member from an archive bundle, verifying the
// declared uncompressed size before reading.
func (s *Store) readMember(bundle, name, ext string) ([]byte, bool) {
	zr, err := zip.OpenReader(bundle)
	if err != nil {
		return nil, false
	}
	defer zr.Close()
	for _, zf := range zr.File {
		if zf.Name != name {
			continue
		}
		size := int64(zf.UncompressedSize64)
		if !sample.IsValidLen(ext, size) {
			return nil, false
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, false
		}
		defer rc.Close()
		data := make([]byte, size)
		if _, err := io.ReadFull(rc, data); err != nil {
			s.logger.Warn().
				Err(err).
				Str("event", "bundle.read_failed").
				Str("bundle", bundle).
				Str("member", name).
				Msg("short read on bundle member")
			return nil, false
		}
		return data, true
	}
	return nil, false
}

// ReadBundleMember returns the uncompressed bytes of the named member of a
// ZIP bundle with no length validation. It reports false when the bundle
// or member is missing or unreadable.
func ReadBundleMember(bundle, name string) ([]byte, bool) {
	zr, err := zip.OpenReader(bundle)
	if err != nil {
		return nil, false
	}
	defer zr.Close()
	for _, zf := range zr.File {
		if zf.Name != name {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, false
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, false
		}
		return data, true
	}
	return nil, false
}
