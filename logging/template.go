// Package logging builds the loggers used by the
// components of a forecasting system run.
package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/meteocima/metfile/fsutil"
	"github.com/sirupsen/logrus"
)

// Template owns the log destination shared by
// every component logger it hands out.
type Template struct {
	Log  *logrus.Logger
	file *os.File
}

// NewTemplate returns a Template logging at level. With a
// non-empty fileName, records are appended to dir/fileName,
// otherwise they go to stderr.
func NewTemplate(dir fsutil.Path, fileName string, level string) (*Template, error) {
	lvl := logrus.InfoLevel
	if level != "" {
		var err error
		lvl, err = logrus.ParseLevel(level)
		if err != nil {
			return nil, err
		}
	}

	log := logrus.New()
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableColors:   fileName != "",
	})

	tmpl := &Template{Log: log}
	if fileName == "" {
		return tmpl, nil
	}

	if err := os.MkdirAll(dir.String(), os.FileMode(0755)); err != nil {
		return nil, fmt.Errorf("cannot create log directory %s: %w", dir, err)
	}
	path := dir.Join(fileName)
	f, err := os.OpenFile(path.String(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(0644))
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}
	log.SetOutput(f)
	tmpl.file = f
	return tmpl, nil
}

// Logger returns a logger that tags
// every record with component.
func (tmpl *Template) Logger(component string) *logrus.Entry {
	return tmpl.Log.WithField("component", component)
}

// Close ...
func (tmpl *Template) Close() error {
	if tmpl.file == nil {
		return nil
	}
	err := tmpl.file.Close()
	tmpl.file = nil
	return err
}
