package contracts

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, APIVersion, info.APIVersion)
	assert.Equal(t, DataFormatVersion, info.DataFormat)
	assert.NotEmpty(t, info.GitCommit)
}

func TestGetVersionInfo_LinkTimeValuesWin(t *testing.T) {
	commit, built := GitCommit, BuildTime
	t.Cleanup(func() { GitCommit, BuildTime = commit, built })

	GitCommit, BuildTime = "abc123", "2026-01-02T03:04:05Z"
	info := GetVersionInfo()
	assert.Equal(t, "abc123", info.GitCommit)
	assert.Equal(t, "2026-01-02T03:04:05Z", info.BuildTime)
}

func TestShortCommit(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortCommit("0123456789abcdef0123"))
	assert.Equal(t, "abc", shortCommit("abc"))
}

func TestGetFullVersionString(t *testing.T) {
	s := GetFullVersionString()
	assert.Contains(t, s, "Penyusutan Dashboard v"+Version)
	assert.Contains(t, s, runtime.GOOS+"/"+runtime.GOARCH)
	assert.Contains(t, s, "data format "+DataFormatVersion)
}
