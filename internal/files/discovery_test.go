package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
	return path
}

func TestIsWorkbookName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"aset.xlsx", true},
		{"ASET.XLSX", true},
		{"aset.xls", false},
		{"aset.csv", false},
		{"~$aset.xlsx", false},
		{"xlsx", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWorkbookName(tt.name))
		})
	}
}

func TestFindWorkbooks(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	touch(t, dir, "maret.xlsx", base.Add(2*time.Hour))
	touch(t, dir, "januari.xlsx", base)
	touch(t, dir, "februari.XLSX", base.Add(time.Hour))
	touch(t, dir, "~$maret.xlsx", base.Add(3*time.Hour))
	touch(t, dir, "catatan.csv", base)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "arsip.xlsx"), 0o755))

	files, err := NewDiscovery("").FindWorkbooks(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"januari.xlsx", "februari.XLSX", "maret.xlsx"}, names)
	assert.Equal(t, int64(4), files[0].Size)
	assert.Equal(t, filepath.Join(dir, "januari.xlsx"), files[0].Path)
}

func TestFindWorkbooks_RelativeToBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "laporan"), 0o755))
	touch(t, filepath.Join(base, "laporan"), "aset.xlsx", time.Now())

	files, err := NewDiscovery(base).FindWorkbooks("laporan")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(base, "laporan", "aset.xlsx"), files[0].Path)

	_, err = NewDiscovery(base).FindWorkbooks("absent")
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	file := touch(t, dir, "aset.xlsx", now)
	touch(t, dir, "aset_lama.xlsx", now.Add(-time.Hour))

	d := NewDiscovery("")

	files, err := d.Expand(file)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "aset.xlsx", files[0].Name)

	files, err = d.Expand(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "aset_lama.xlsx", files[0].Name)

	_, err = d.Expand(t.TempDir())
	assert.ErrorContains(t, err, "no .xlsx workbooks")

	_, err = d.Expand(filepath.Join(dir, "absent.xlsx"))
	assert.Error(t, err)
}

func TestGetLatestFile(t *testing.T) {
	_, ok := GetLatestFile(nil)
	assert.False(t, ok)

	now := time.Now()
	latest, ok := GetLatestFile([]FileInfo{
		{Name: "a", ModTime: now.Add(-time.Hour)},
		{Name: "b", ModTime: now},
		{Name: "c", ModTime: now.Add(-2 * time.Hour)},
	})
	require.True(t, ok)
	assert.Equal(t, "b", latest.Name)
}
