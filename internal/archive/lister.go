package archive

import (
	"archive/zip"
	"os"
	"path"
	"strings"

	"github.com/mnit-rtmc/trafdat/internal/dates"
	"github.com/mnit-rtmc/trafdat/internal/sample"
)

// Checker filters one directory entry or bundle member. It receives the
// base name and whether the entry is a directory, and returns the value to
// collect, or false to skip the entry.
type Checker func(name string, dir bool) (string, bool)

// CheckDir accepts directories, returning their name unchanged. Used for
// district listings.
func CheckDir(name string, dir bool) (string, bool) {
	if dir {
		return name, true
	}
	return "", false
}

// CheckDate accepts date directories and .traffic bundles. A bundle name is
// 16 characters (YYYYMMDD.traffic); only the date stem is returned, so a
// date present both as a directory and as a bundle lists twice and is
// deduplicated by the caller.
func CheckDate(name string, dir bool) (string, bool) {
	if dir {
		if dates.IsValidDate(name) {
			return name, true
		}
	} else if len(name) == 16 && strings.HasSuffix(name, BundleExt) {
		date := name[:8]
		if dates.IsValidDate(date) {
			return date, true
		}
	}
	return "", false
}

// CheckSid accepts sample files, returning the sensor id stem. Names are
// split at the first dot, the same split the sample reader applies to URL
// segments, so every listed sid resolves on a later read.
func CheckSid(name string, dir bool) (string, bool) {
	if dir {
		return "", false
	}
	sid, ext, ok := sample.SplitSidExt(name)
	if !ok || !sample.IsValidExt(ext) {
		return "", false
	}
	return sid, true
}

// CheckExt accepts sample files belonging to the given sensor id, returning
// the extension. The name is split at the first dot, matching CheckSid.
func CheckExt(sid string) Checker {
	return func(name string, dir bool) (string, bool) {
		if dir {
			return "", false
		}
		st, ext, ok := sample.SplitSidExt(name)
		if !ok || st != sid || !sample.IsValidExt(ext) {
			return "", false
		}
		return ext, true
	}
}

// ListDir lists the entries of a directory which pass check. Symbolic
// links are skipped. A missing or unreadable directory yields nil rather
// than an error; the archive writer may remove directories at any time.
func ListDir(dir string, check Checker) []string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var list []string
	for _, ent := range ents {
		if ent.Type()&os.ModeSymlink != 0 {
			continue
		}
		if v, ok := check(ent.Name(), ent.IsDir()); ok {
			list = append(list, v)
		}
	}
	return list
}

// ListBundle lists the members of a ZIP bundle which pass check. Member
// names are reduced to their base name; bundles never contain directories
// of interest. Missing or corrupt bundles yield nil.
func ListBundle(bundle string, check Checker) []string {
	zr, err := zip.OpenReader(bundle)
	if err != nil {
		return nil
	}
	defer zr.Close()
	var list []string
	for _, zf := range zr.File {
		name := path.Base(strings.TrimSuffix(zf.Name, "/"))
		if name == "." || name == "/" {
			continue
		}
		if v, ok := check(name, false); ok {
			list = append(list, v)
		}
	}
	return list
}
