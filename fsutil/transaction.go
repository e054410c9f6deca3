package fsutil

import (
	"fmt"
	"io"
	"os"
)

// Transaction groups a sequence of filesystem operations
// relative to Root. The first failing operation sets Err,
// and every later operation becomes a no-op.
type Transaction struct {
	Root Path
	Err  error
}

func (tr *Transaction) abs(file Path) Path {
	return file.Resolve(tr.Root)
}

// Exists ...
func (tr *Transaction) Exists(file Path) bool {
	if tr.Err != nil {
		return false
	}
	_, err := os.Stat(tr.abs(file).String())
	if !os.IsNotExist(err) && err != nil {
		tr.Err = fmt.Errorf("Exists `%s`: Stat error: %w", file.String(), err)
	}
	return err == nil
}

// MkDir ...
func (tr *Transaction) MkDir(dir Path) {
	if tr.Err != nil {
		return
	}
	err := os.MkdirAll(tr.abs(dir).String(), os.FileMode(0755))
	if err != nil {
		tr.Err = fmt.Errorf("MkDir `%s`: MkdirAll error: %w", dir.String(), err)
	}
}

// RmDir ...
func (tr *Transaction) RmDir(dir Path) {
	if tr.Err != nil {
		return
	}
	err := os.RemoveAll(tr.abs(dir).String())
	if err != nil {
		tr.Err = fmt.Errorf("RmDir `%s`: RemoveAll error: %w", dir.String(), err)
	}
}

// WriteFile creates or truncates file and fills it
// by calling write.
func (tr *Transaction) WriteFile(file Path, write func(w io.Writer) error) {
	if tr.Err != nil {
		return
	}

	target, err := os.OpenFile(tr.abs(file).String(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(0664))
	if err != nil {
		tr.Err = fmt.Errorf("WriteFile `%s`: OpenFile error: %w", file.String(), err)
		return
	}

	err = write(target)
	if cerr := target.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		tr.Err = fmt.Errorf("WriteFile `%s`: %w", file.String(), err)
	}
}
