// Package translate converts configuration documents between formats.
package translate

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/thoreinstein/cfgtree/pkg/codec"
	"github.com/thoreinstein/cfgtree/pkg/fileutil"
)

// Convert decodes data with from and re-encodes it with to. Key order is kept
// wherever both formats can express it.
func Convert(data []byte, from, to codec.Codec) ([]byte, error) {
	m, err := from.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", from.Name())
	}
	out, err := to.Encode(m)
	if err != nil {
		return nil, errors.Wrapf(err, "writing %s", to.Name())
	}
	return out, nil
}

// ConvertFile converts the file src into dst. A nil codec is chosen from the
// file's extension. dst is replaced atomically and keeps its permissions if
// it already exists.
func ConvertFile(fs afero.Fs, src, dst string, from, to codec.Codec) error {
	var err error
	if from == nil {
		if from, err = codec.ForPath(src); err != nil {
			return err
		}
	}
	if to == nil {
		if to, err = codec.ForPath(dst); err != nil {
			return err
		}
	}

	data, err := fileutil.ReadFileWithLimit(fs, src)
	if err != nil {
		return errors.Wrapf(err, "reading %s", src)
	}
	out, err := Convert(data, from, to)
	if err != nil {
		return errors.Wrapf(err, "converting %s", src)
	}

	perm := os.FileMode(0o644)
	if info, err := fs.Stat(dst); err == nil {
		perm = info.Mode().Perm()
	} else if _, err := fileutil.EnsureFile(fs, dst, perm); err != nil {
		return errors.Wrapf(err, "creating %s", dst)
	}
	return fileutil.AtomicWriteFile(fs, dst, out, perm)
}

// YAMLToTOML converts YAML data to TOML data.
func YAMLToTOML(yamlData []byte) ([]byte, error) {
	return Convert(yamlData, codec.YAML{}, codec.TOML{})
}

// TOMLToYAML converts TOML data to YAML data.
func TOMLToYAML(tomlData []byte) ([]byte, error) {
	return Convert(tomlData, codec.TOML{}, codec.YAML{})
}
