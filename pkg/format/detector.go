package format

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/archivemaster/archivemaster/pkg/types"
)

var (
	zipMagic  = []byte{0x50, 0x4b, 0x03, 0x04}
	rarMagic  = []byte{0x52, 0x61, 0x72, 0x21, 0x1a, 0x07}
	gzipMagic = []byte{0x1f, 0x8b}
	bz2Magic  = []byte{0x42, 0x5a, 0x68}
)

// ustar magic lives at this offset inside the first tar header block.
const tarMagicOffset = 257

var tarMagic = []byte("ustar")

// Detect classifies the archive format of the file at the given path. The
// file extension is consulted first; when it is absent or unrecognized the
// leading bytes are sniffed for a known signature. Detection is stateless,
// so repeated calls on the same file always agree.
func Detect(path string) (types.ArchiveKind, error) {
	if kind := detectByName(path); kind != types.KindUnknown {
		return kind, nil
	}
	kind, err := detectByMagic(path)
	if err != nil {
		return types.KindUnknown, err
	}
	if kind == types.KindUnknown {
		return types.KindUnknown, fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, path)
	}
	return kind, nil
}

func detectByName(path string) types.ArchiveKind {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return types.KindTarGz
	case strings.HasSuffix(name, ".tar.bz2"), strings.HasSuffix(name, ".tbz2"):
		return types.KindTarBz2
	case strings.HasSuffix(name, ".tar"):
		return types.KindTar
	case strings.HasSuffix(name, ".zip"):
		return types.KindZip
	case strings.HasSuffix(name, ".rar"):
		return types.KindRar
	}
	return types.KindUnknown
}

func detectByMagic(path string) (types.ArchiveKind, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.KindUnknown, err
	}
	defer f.Close()

	header := make([]byte, tarMagicOffset+len(tarMagic))
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return types.KindUnknown, err
	}
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, zipMagic):
		return types.KindZip, nil
	case bytes.HasPrefix(header, rarMagic):
		return types.KindRar, nil
	case bytes.HasPrefix(header, gzipMagic):
		// A bare gzip stream is treated as a compressed tar, matching how
		// extensionless inputs are produced in practice.
		return types.KindTarGz, nil
	case bytes.HasPrefix(header, bz2Magic):
		return types.KindTarBz2, nil
	case len(header) >= tarMagicOffset+len(tarMagic) &&
		bytes.Equal(header[tarMagicOffset:tarMagicOffset+len(tarMagic)], tarMagic):
		return types.KindTar, nil
	}
	return types.KindUnknown, nil
}

var (
	partVolumePattern   = regexp.MustCompile(`(?i)^(.+)\.part(\d+)\.rar$`)
	legacyVolumePattern = regexp.MustCompile(`(?i)^(.+)\.r(\d{2})$`)
)

// ResolveVolumeSet expands the first volume of a multi-volume RAR archive
// into the ordered, contiguous list of sibling volumes on disk. Supported
// naming schemes are the modern `name.partNNN.rar` and the legacy
// `name.rar` + `name.r00` + `name.r01` chain. A non-multi-volume archive
// resolves to a set of size one.
//
// Only the first volume may be supplied by the caller; handing in a later
// volume, or a first volume whose successor chain has a gap before its
// last discoverable member, fails with ErrIncompleteVolumeSet.
func ResolveVolumeSet(path string) (types.VolumeSet, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)

	if m := legacyVolumePattern.FindStringSubmatch(name); m != nil {
		return nil, fmt.Errorf("%w: %s is not the first volume of its set", types.ErrIncompleteVolumeSet, path)
	}

	if m := partVolumePattern.FindStringSubmatch(name); m != nil {
		idx, err := strconv.Atoi(m[2])
		if err != nil || idx != 1 {
			return nil, fmt.Errorf("%w: %s is not the first volume of its set", types.ErrIncompleteVolumeSet, path)
		}
		set := types.VolumeSet{path}
		width := len(m[2])
		n := 2
		for ; ; n++ {
			next := filepath.Join(dir, fmt.Sprintf("%s.part%0*d.rar", m[1], width, n))
			if _, err := os.Stat(next); err != nil {
				break
			}
			set = append(set, next)
		}
		// Any sibling volume past the contiguous run means the chain has a
		// gap, however wide.
		if hasLaterVolume(dir, m[1], partVolumePattern, n) {
			return nil, fmt.Errorf("%w: missing volume %d of %s", types.ErrIncompleteVolumeSet, n, path)
		}
		return set, nil
	}

	// Legacy sets keep the first volume at name.rar and continue at .r00.
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	set := types.VolumeSet{path}
	n := 0
	for ; ; n++ {
		next := filepath.Join(dir, fmt.Sprintf("%s.r%02d", stem, n))
		if _, err := os.Stat(next); err != nil {
			break
		}
		set = append(set, next)
	}
	if hasLaterVolume(dir, stem, legacyVolumePattern, n) {
		return nil, fmt.Errorf("%w: missing volume %s.r%02d", types.ErrIncompleteVolumeSet, stem, n)
	}
	return set, nil
}

// hasLaterVolume reports whether the directory holds any volume of the
// given set numbered at or past the first missing index.
func hasLaterVolume(dir, stem string, pattern *regexp.Regexp, from int) bool {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, info := range infos {
		m := pattern.FindStringSubmatch(info.Name())
		if m == nil || !strings.EqualFold(m[1], stem) {
			continue
		}
		if idx, err := strconv.Atoi(m[2]); err == nil && idx >= from {
			return true
		}
	}
	return false
}
