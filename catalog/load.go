package catalog

import (
	"bytes"
	"io"
	"os"

	"github.com/drone/envsubst"
	"gopkg.in/yaml.v3"

	apperrors "github.com/kbukum/apikit/errors"
)

// Load reads a YAML catalog. ${VAR} references are expanded from the process
// environment before parsing; unknown fields are rejected.
func Load(r io.Reader) (Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Catalog{}, apperrors.Configuration("read catalog").WithCause(err)
	}
	expanded, err := envsubst.EvalEnv(string(raw))
	if err != nil {
		return Catalog{}, apperrors.Configuration("expand catalog").WithCause(err)
	}

	var c Catalog
	dec := yaml.NewDecoder(bytes.NewBufferString(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Catalog{}, apperrors.Configuration("parse catalog").WithCause(err)
	}
	return c, nil
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, apperrors.Configuration("open catalog %s", path).WithCause(err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}
