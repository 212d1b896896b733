package config

import (
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// FileSystem reads configuration files.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

type osFS struct{}

func (osFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// DefaultFS returns the operating system file system.
func DefaultFS() FileSystem { return osFS{} }

// LoadFile returns the defaults overlaid with the TOML file at path.
func LoadFile(path string) (*Config, error) {
	return LoadFileFS(DefaultFS(), path)
}

// LoadFileFS is LoadFile reading through fsys.
func LoadFileFS(fsys FileSystem, path string) (*Config, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}
	c := Default()
	if err := c.decode(path, data); err != nil {
		return nil, err
	}
	return c, nil
}

// Load returns the defaults overlaid with TOML read from r.
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	c := Default()
	if err := c.decode("<reader>", data); err != nil {
		return nil, err
	}
	return c, nil
}

// decode overlays data on c. Unknown keys are errors so that misspelled
// settings are not silently ignored.
func (c *Config) decode(source string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		pe := &ParseError{Path: source, Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}

// Marshal encodes c as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
