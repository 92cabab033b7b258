package artifact

import (
	"archive/zip"
	"encoding/json"
	"io"
	"sort"

	"guardrail/internal/compiler"
)

// ExportZip writes the bundle as a zip archive. Entries are sorted and
// stamped with the bundle's generation time, so exporting the same
// result twice yields byte-identical archives.
func ExportZip(res *compiler.Result, w io.Writer) error {
	zw := zip.NewWriter(w)

	entries := make(map[string][]byte, len(res.Contracts)+len(res.Documents)+1)
	for name, content := range res.Contracts {
		entries[name] = []byte(content)
	}
	for name, content := range res.Documents {
		entries[name] = content
	}

	sums, err := ComputeChecksums(res)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(sums, "", "  ")
	if err != nil {
		return err
	}
	entries[ChecksumsFilename] = append(encoded, '\n')

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: res.Metadata.GeneratedAt.UTC(),
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		if _, err := fw.Write(entries[name]); err != nil {
			return err
		}
	}

	return zw.Close()
}
