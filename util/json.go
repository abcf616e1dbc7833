package util

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ReadJSONInto reads and closes r, unmarshalling its contents into data.
func ReadJSONInto(r io.ReadCloser, data interface{}) error {
	defer r.Close()
	bytes, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, data)
}

// WriteJSONFileAtomic marshals data and writes it to path via a temp file in
// the same directory followed by a rename, so concurrent readers never see a
// partial file. Parent directories are created as needed.
func WriteJSONFileAtomic(path string, data interface{}, perm os.FileMode) error {
	out, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return errors.Wrap(err, "marshalling data")
	}
	out = append(out, '\n')
	return WriteFileAtomic(path, out, perm)
}

// WriteFileAtomic writes out to path with create-temp + rename semantics.
func WriteFileAtomic(path string, out []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "creating directory '%s'", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(out); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing temp file '%s'", tmp.Name())
	}
	if err = tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "setting mode on '%s'", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing temp file '%s'", tmp.Name())
	}

	return errors.Wrapf(os.Rename(tmp.Name(), path), "renaming '%s' to '%s'", tmp.Name(), path)
}
