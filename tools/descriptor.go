package tools

// Descriptor is the configuration of one compressor under test. It is
// created by the registry loader and never modified afterwards.
type Descriptor struct {
	ID          string   `validate:"required"`
	Name        string   `validate:"required"`
	Category    string   `validate:"required"`
	Description string
	Compress    string   `validate:"required"`
	Decompress  string   `validate:"required"`
	Extension   string   `validate:"required"`
	VersionCmd  string
	Binary      string   `validate:"required"`
	Candidates  []string

	path          string
	fromCandidate bool
	available     bool
}

// Available reports whether the tool's binary was found on this host.
func (d *Descriptor) Available() bool {
	return d.available
}

// Path returns the resolved binary path, or "" when unavailable.
func (d *Descriptor) Path() string {
	return d.path
}

// CompressCommand returns the shell command compressing p.Input into
// p.Output.
func (d *Descriptor) CompressCommand(p Params) (string, error) {
	return d.command(d.Compress, p)
}

// DecompressCommand returns the shell command restoring p.Output into
// p.Decompressed.
func (d *Descriptor) DecompressCommand(p Params) (string, error) {
	return d.command(d.Decompress, p)
}

// VersionCommand returns the version probe command, or "" when the tool
// has none.
func (d *Descriptor) VersionCommand() string {
	if d.VersionCmd == "" {
		return ""
	}
	return d.rewriteBinary(d.VersionCmd)
}

func (d *Descriptor) command(tmpl string, p Params) (string, error) {
	cmd, err := Substitute(tmpl, p)
	if err != nil {
		return "", err
	}
	return d.rewriteBinary(cmd), nil
}

// rewriteBinary points the leading word of cmd at the candidate path the
// binary was resolved to. PATH hits are left as written.
func (d *Descriptor) rewriteBinary(cmd string) string {
	if !d.fromCandidate || d.path == d.Binary {
		return cmd
	}
	return replaceFirstToken(cmd, d.Binary, shellQuote(d.path))
}

// resolve locates the binary once; the result is cached on the descriptor.
func (d *Descriptor) resolve(lookPath LookPathFunc) {
	d.path, d.fromCandidate, d.available = Resolve(d.Binary, d.Candidates, lookPath)
}
