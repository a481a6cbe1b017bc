package reader

import (
	"fmt"

	"github.com/archivemaster/archivemaster/pkg/format"
	"github.com/archivemaster/archivemaster/pkg/reader/rar"
	"github.com/archivemaster/archivemaster/pkg/types"
)

// RarBackend is the extraction capability used to open RAR volume sets.
// It can be swapped out for an alternate implementation, or set to nil to
// simulate a missing backend. Tests substitute rar.Mock.
var RarBackend types.RarExtractor = rar.New()

// Open resolves the archive format of the file at the given path and returns
// an enumeration session for it.
func Open(path string) (types.ArchiveReader, error) {
	kind, err := format.Detect(path)
	if err != nil {
		return nil, err
	}
	return OpenKind(path, kind)
}

// OpenKind returns an enumeration session for an input whose format has
// already been detected.
func OpenKind(path string, kind types.ArchiveKind) (types.ArchiveReader, error) {
	switch kind {
	case types.KindZip:
		return openZip(path)
	case types.KindTar, types.KindTarGz, types.KindTarBz2:
		return openTar(path, kind)
	case types.KindRar:
		return openRar(path)
	}
	return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, path)
}

func openRar(path string) (types.ArchiveReader, error) {
	if RarBackend == nil {
		return nil, fmt.Errorf("%w: no extractor configured for %s", types.ErrRarBackendUnavailable, path)
	}
	set, err := format.ResolveVolumeSet(path)
	if err != nil {
		return nil, err
	}
	return RarBackend.Open(set)
}
