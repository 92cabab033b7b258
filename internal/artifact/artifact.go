// Package artifact persists compile results: writing the bundle to a
// directory, computing content hashes, and zipping for audit export.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gowebpki/jcs"

	"guardrail/internal/compiler"
)

// ChecksumsFilename is written alongside the bundle.
const ChecksumsFilename = "checksums.json"

// Checksums is the per-file hash manifest plus a bundle hash over the
// canonical form of the file map, so any change to any artifact changes
// exactly one stable top-level value.
type Checksums struct {
	Files      map[string]string `json:"files"`       // filename -> sha256:hex
	BundleHash string            `json:"bundle_hash"` // sha256:hex over canonical Files
}

// ComputeChecksums hashes every artifact in the result.
func ComputeChecksums(res *compiler.Result) (*Checksums, error) {
	files := make(map[string]string)
	for name, content := range res.Contracts {
		files[name] = hashBytes([]byte(content))
	}
	for name, content := range res.Documents {
		files[name] = hashBytes(content)
	}

	raw, err := json.Marshal(files)
	if err != nil {
		return nil, err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize checksum map: %w", err)
	}

	return &Checksums{
		Files:      files,
		BundleHash: hashBytes(canonical),
	}, nil
}

// Write writes every artifact plus the checksum manifest into dir,
// creating it if needed.
func Write(res *compiler.Result, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for name, content := range res.Contracts {
		if err := writeFile(dir, name, []byte(content)); err != nil {
			return err
		}
	}
	for name, content := range res.Documents {
		if err := writeFile(dir, name, content); err != nil {
			return err
		}
	}

	sums, err := ComputeChecksums(res)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(sums, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(dir, ChecksumsFilename, append(encoded, '\n'))
}

func writeFile(dir, name string, content []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("write artifact '%s': %w", name, err)
	}
	return nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}
