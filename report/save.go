package report

import "io"

// SaveMarkdown writes the Markdown report to path.
func SaveMarkdown(path string, d *Document) error {
	return writeFile(path, func(w io.Writer) error { return WriteMarkdown(w, d) })
}

// SaveHTML writes the HTML report to path.
func SaveHTML(path string, d *Document) error {
	return writeFile(path, func(w io.Writer) error { return WriteHTML(w, d, nil) })
}

// SaveWorkbook writes the XLSX workbook to path.
func SaveWorkbook(path string, d *Document) error {
	return writeFile(path, func(w io.Writer) error { return WriteWorkbook(w, d) })
}
