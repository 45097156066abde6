package registry

import (
	"context"
	"os"
	"path/filepath"

	"github.com/agentstation/careroster/pkg/clients"
	"github.com/agentstation/careroster/pkg/constants"
	"github.com/agentstation/careroster/pkg/errors"
)

// File stores the registry as a local YAML file.
type File struct {
	path   string
	rename func(oldpath, newpath string) error
}

// NewFile returns a file store for path.
func NewFile(path string) *File {
	return &File{path: path, rename: os.Rename}
}

// Location returns the file path.
func (f *File) Location() string { return f.path }

// Load reads the registry file. A missing file is an empty registry.
func (f *File) Load(ctx context.Context) (*clients.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return clients.NewRegistry()
	}
	if err != nil {
		return nil, errors.WrapIO("read", f.path, err)
	}
	return Decode(data, f.path)
}

// Save writes the registry to a temp file in the same directory, syncs it,
// and renames it over the target.
func (f *File) Save(ctx context.Context, reg *clients.Registry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(reg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapSerialization("save", f.path, errors.WrapIO("create directory", dir, err))
	}

	tmp, err := os.CreateTemp(dir, ".registry-*.tmp")
	if err != nil {
		return errors.WrapSerialization("save", f.path, errors.WrapIO("create temp", dir, err))
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.WrapSerialization("save", f.path, errors.WrapIO("write", tmp.Name(), err))
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.WrapSerialization("save", f.path, errors.WrapIO("sync", tmp.Name(), err))
	}
	if err := tmp.Chmod(constants.SecureFilePermissions); err != nil {
		_ = tmp.Close()
		return errors.WrapSerialization("save", f.path, errors.WrapIO("chmod", tmp.Name(), err))
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapSerialization("save", f.path, errors.WrapIO("close", tmp.Name(), err))
	}
	if err := f.rename(tmp.Name(), f.path); err != nil {
		return errors.WrapSerialization("save", f.path, errors.WrapIO("rename", f.path, err))
	}
	return nil
}
