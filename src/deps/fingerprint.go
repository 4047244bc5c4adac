package deps

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	"github.com/sofmeright/netrig/src/backend"
)

// stampName is the per-artifact stamp file written under the install path.
const stampName = ".netrig-stamp.json"

// schemaVersion is folded into every fingerprint so stamp format changes
// invalidate old artifacts.
const schemaVersion = "1"

// Fingerprint derives the configuration identity of one build stage. Two
// stages with equal fingerprints are interchangeable; anything that affects
// the produced artifact participates: backend, driver variant, profile,
// pinned dependency version, source revision, and the fingerprint of the
// stage this one builds against.
func Fingerprint(stage string, spec backend.Spec, version, revision, depFingerprint string) string {
	h := sha256.New()
	for _, part := range []string{
		schemaVersion,
		stage,
		string(spec.Name),
		string(spec.Driver),
		string(spec.Profile),
		version,
		revision,
		depFingerprint,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SourceRevision returns the HEAD commit hash of the checkout at dir, or
// "unversioned" when dir is not a git repository. Tarball-extracted sources
// still fingerprint correctly through the pinned version.
func SourceRevision(dir string) string {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "unversioned"
	}
	head, err := repo.Head()
	if err != nil {
		return "unversioned"
	}
	return head.Hash().String()
}

// Stamp marks a fully built artifact. A stamp is only ever written after
// every stage step succeeded, so its presence is the sole authority for
// "this install tree is complete and reusable".
type Stamp struct {
	Fingerprint  string   `json:"fingerprint"`
	Version      string   `json:"version"`
	LibraryPaths []string `json:"libraryPaths"`
}

// ReadStamp loads the stamp under installPath. Returns ErrStampMissing when
// no stamp exists or it cannot be parsed — an unreadable stamp is treated as
// a cache miss, never trusted.
func ReadStamp(installPath string) (*Stamp, error) {
	data, err := os.ReadFile(filepath.Join(installPath, stampName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrStampMissing
		}
		return nil, fmt.Errorf("reading stamp: %w", err)
	}

	st := &Stamp{}
	if err := json.Unmarshal(data, st); err != nil {
		return nil, ErrStampMissing
	}
	return st, nil
}

// WriteStamp commits the stamp atomically (temp file + rename) so a crash
// mid-write can only ever yield a cache miss, not a half-trusted artifact.
func WriteStamp(installPath string, st *Stamp) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling stamp: %w", err)
	}

	tmp, err := os.CreateTemp(installPath, stampName+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating stamp temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing stamp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing stamp: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(installPath, stampName)); err != nil {
		return fmt.Errorf("committing stamp: %w", err)
	}
	return nil
}
