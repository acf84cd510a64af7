package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "penyusutan/internal/errors"
	"penyusutan/internal/shared/testutil"
)

func TestFileValidator_ValidateUpload(t *testing.T) {
	xlsx := []byte("PK\x03\x04")

	tests := []struct {
		name          string
		file          string
		size          int64
		header        []byte
		wantErr       bool
		errorContains string
	}{
		{name: "valid workbook", file: "aset.xlsx", size: 100, header: xlsx},
		{name: "upper case extension", file: "ASET.XLSX", size: 100, header: xlsx},
		{name: "legacy xls", file: "aset.xls", size: 100, header: xlsx, wantErr: true, errorContains: ".xlsx"},
		{name: "csv", file: "aset.csv", size: 100, header: []byte("a,b"), wantErr: true, errorContains: ".csv"},
		{name: "no extension", file: "aset", size: 100, header: xlsx, wantErr: true},
		{name: "lock file", file: "~$aset.xlsx", size: 100, header: xlsx, wantErr: true, errorContains: "temporary"},
		{name: "empty", file: "aset.xlsx", size: 0, header: nil, wantErr: true, errorContains: "empty"},
		{name: "too large", file: "aset.xlsx", size: 2048, header: xlsx, wantErr: true, errorContains: "limit is 1024"},
		{name: "renamed text file", file: "aset.xlsx", size: 10, header: []byte("hello"), wantErr: true, errorContains: "not an xlsx"},
		{name: "short header", file: "aset.xlsx", size: 2, header: []byte("PK"), wantErr: true},
	}

	v := NewFileValidator(nil, 1024)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpload(tt.file, tt.size, tt.header)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.errorContains != "" {
				assert.Contains(t, err.Error(), tt.errorContains)
			}
			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
		})
	}
}

func TestFileValidator_ValidateUpload_NoLimit(t *testing.T) {
	v := NewFileValidator(nil, 0)
	assert.NoError(t, v.ValidateUpload("big.xlsx", 1<<40, []byte("PK\x03\x04rest")))
}

func TestFileValidator_ValidateFile(t *testing.T) {
	dir := t.TempDir()
	notWorkbook := filepath.Join(dir, "fake.xlsx")
	require.NoError(t, os.WriteFile(notWorkbook, []byte("not a zip"), 0644))

	tests := []struct {
		name          string
		path          string
		errorContains string
	}{
		{name: "real workbook", path: testutil.SampleAssets().Save(t, "aset.xlsx")},
		{name: "missing", path: filepath.Join(dir, "missing.xlsx"), errorContains: "does not exist"},
		{name: "directory", path: dir, errorContains: "is a directory"},
		{name: "wrong content", path: notWorkbook, errorContains: "not an xlsx"},
	}

	logger, handler := testutil.NewTestLogger(t)
	v := NewFileValidator(logger, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFile(tt.path)
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
	assert.True(t, handler.ContainsMessage("File does not exist"))
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil, 0)

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, v.ValidateOutputDirectory(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	assert.Error(t, v.ValidateOutputDirectory(filepath.Join(file, "sub")))
}
