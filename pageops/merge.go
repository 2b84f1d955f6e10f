package pageops

import (
	"fmt"
	"io"
	"os"
)

// Merge combines several PDF documents and writes the result to w. Pages are
// added in order: all pages of the first document, then all of the second,
// and so on. It returns the number of pages written.
func Merge(w io.Writer, docs ...[]byte) (int, error) {
	if len(docs) == 0 {
		return 0, fmt.Errorf("pageops: no input documents provided")
	}

	im := newImporter()
	defer im.cleanup()
	total := 0
	for i, doc := range docs {
		n, err := im.appendDocument(doc, nil)
		if err != nil {
			return 0, fmt.Errorf("pageops: merging document %d: %w", i+1, err)
		}
		total += n
	}
	if err := im.output(w); err != nil {
		return 0, fmt.Errorf("pageops: merge: %w", err)
	}
	return total, nil
}

// MergeFiles combines multiple PDF files into a single output file.
func MergeFiles(outputPath string, inputPaths ...string) error {
	docs := make([][]byte, 0, len(inputPaths))
	for _, p := range inputPaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("pageops: reading %s: %w", p, err)
		}
		docs = append(docs, data)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("pageops: creating %s: %w", outputPath, err)
	}
	if _, err := Merge(f, docs...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
