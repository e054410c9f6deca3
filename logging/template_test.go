package logging

import (
	"os"
	"testing"

	"github.com/meteocima/metfile/fsutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateFile(t *testing.T) {
	dir := fsutil.Path(t.TempDir()).Join("logs")
	tmpl, err := NewTemplate(dir, "system.log", "debug")
	require.NoError(t, err)

	tmpl.Logger("wettermast").WithField("variable", "T").Debug("extracting")
	require.NoError(t, tmpl.Close())
	assert.NoError(t, tmpl.Close())

	content, err := os.ReadFile(dir.Join("system.log").String())
	require.NoError(t, err)
	assert.Contains(t, string(content), "component=wettermast")
	assert.Contains(t, string(content), "variable=T")
	assert.Contains(t, string(content), "level=debug")
}

func TestTemplateLevel(t *testing.T) {
	tmpl, err := NewTemplate("", "", "")
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, tmpl.Log.GetLevel())
	assert.Equal(t, os.Stderr, tmpl.Log.Out)

	_, err = NewTemplate("", "", "chatty")
	assert.Error(t, err)
}
