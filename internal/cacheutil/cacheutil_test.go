// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDir_WithAWSCTL_CACHE_DIR verifies Dir() respects AWSCTL_CACHE_DIR
// environment variable with highest priority.
func TestDir_WithAWSCTL_CACHE_DIR(t *testing.T) {
	customDir := t.TempDir()
	t.Setenv("AWSCTL_CACHE_DIR", customDir)

	result, ok := Dir()

	assert.True(t, ok)
	assert.Equal(t, customDir, result)
}

// TestDir_WithoutAWSCTL_CACHE_DIR verifies Dir() falls back to
// os.UserCacheDir/awsctl when env var not set.
func TestDir_WithoutAWSCTL_CACHE_DIR(t *testing.T) {
	t.Setenv("AWSCTL_CACHE_DIR", "")

	result, ok := Dir()

	if ok {
		assert.NotEmpty(t, result)
		assert.True(t, filepath.IsAbs(result))
	}
}

// TestEnabled verifies the AWSCTL_CACHE switch semantics.
func TestEnabled(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected bool
	}{
		{"1", "1", true},
		{"true", "true", true},
		{"yes", "yes", true},
		{"empty string", "", true},
		{"0", "0", false},
		{"false", "false", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AWSCTL_CACHE", tt.value)
			assert.Equal(t, tt.expected, Enabled())
		})
	}
}

// TestEnsureBaseDir_CachingDisabled verifies EnsureBaseDir returns empty
// when caching is disabled.
func TestEnsureBaseDir_CachingDisabled(t *testing.T) {
	t.Setenv("AWSCTL_CACHE", "0")

	base, ok, err := EnsureBaseDir()

	assert.False(t, ok)
	assert.Empty(t, base)
	assert.NoError(t, err)
}

// TestEnsureBaseDir_CreatesDirectory verifies EnsureBaseDir creates the
// cache directory when it doesn't exist.
func TestEnsureBaseDir_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	cacheDir := filepath.Join(tmpDir, "cache", "nested")
	t.Setenv("AWSCTL_CACHE_DIR", cacheDir)
	t.Setenv("AWSCTL_CACHE", "1")

	assert.NoFileExists(t, cacheDir)

	base, ok, err := EnsureBaseDir()

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cacheDir, base)
	assert.DirExists(t, cacheDir)
}

// TestEnsureBaseDir_CreateFailure verifies EnsureBaseDir reports the error
// and ok=false when the directory cannot be created, so callers must branch
// on the error alone.
func TestEnsureBaseDir_CreateFailure(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	t.Setenv("AWSCTL_CACHE_DIR", filepath.Join(blocker, "cache"))
	t.Setenv("AWSCTL_CACHE", "1")

	base, ok, err := EnsureBaseDir()

	assert.Error(t, err)
	assert.False(t, ok)
	assert.NotEmpty(t, base)
}

// TestEntryPath_NonexistentEntry verifies EntryPath returns computed path
// and false when file doesn't exist.
func TestEntryPath_NonexistentEntry(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("AWSCTL_CACHE_DIR", tmpDir)

	path, exists := EntryPath([]string{"subdir1", "subdir2"}, "my-key")

	assert.False(t, exists)
	assert.NotEmpty(t, path)
	assert.True(t, filepath.IsAbs(path))
}

// TestEntryPath_ExistingEntry verifies EntryPath returns true when file
// exists at computed path.
func TestEntryPath_ExistingEntry(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("AWSCTL_CACHE_DIR", tmpDir)

	subdir := filepath.Join(tmpDir, "subdir")
	err := os.MkdirAll(subdir, 0o755)
	require.NoError(t, err)

	encodedKey := encodeKey("my-key")
	filePath := filepath.Join(subdir, encodedKey)
	err = os.WriteFile(filePath, []byte("data"), 0o600)
	require.NoError(t, err)

	path, exists := EntryPath([]string{"subdir"}, "my-key")

	assert.True(t, exists)
	assert.Equal(t, filePath, path)
}

// TestRead_CachingDisabled verifies Read returns false when caching is
// disabled.
func TestRead_CachingDisabled(t *testing.T) {
	t.Setenv("AWSCTL_CACHE", "0")

	entry, found := Read([]string{"subdir"}, "key")

	assert.False(t, found)
	assert.Nil(t, entry)
}

// TestRead_SuccessfulRead verifies Read returns populated Entry when file
// exists.
func TestRead_SuccessfulRead(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("AWSCTL_CACHE_DIR", tmpDir)
	t.Setenv("AWSCTL_CACHE", "1")

	subdir := filepath.Join(tmpDir, "data")
	err := os.MkdirAll(subdir, 0o755)
	require.NoError(t, err)

	testData := []byte("cached data content")
	testKey := "cache-key-123"
	encodedKey := encodeKey(testKey)
	filePath := filepath.Join(subdir, encodedKey)

	err = os.WriteFile(filePath, testData, 0o600)
	require.NoError(t, err)

	entry, found := Read([]string{"data"}, testKey)

	assert.True(t, found)
	assert.NotNil(t, entry)
	assert.Equal(t, testKey, entry.Key)
	assert.Equal(t, encodedKey, entry.EncodedKey)
	assert.Equal(t, filePath, entry.Path)
	assert.Equal(t, testData, entry.Data)
	assert.False(t, entry.ModTime.IsZero())
}

// TestReadFresh_WithinTTL verifies a freshly written entry is served.
func TestReadFresh_WithinTTL(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("AWSCTL_CACHE_DIR", tmpDir)
	t.Setenv("AWSCTL_CACHE", "1")

	require.NoError(t, Write([]string{"inv"}, "query", []byte("snapshot")))

	entry, found := ReadFresh([]string{"inv"}, "query", time.Hour)

	assert.True(t, found)
	assert.Equal(t, []byte("snapshot"), entry.Data)
}

// TestReadFresh_Expired verifies an entry older than the TTL is a miss but
// remains on disk.
func TestReadFresh_Expired(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("AWSCTL_CACHE_DIR", tmpDir)
	t.Setenv("AWSCTL_CACHE", "1")

	require.NoError(t, Write([]string{"inv"}, "query", []byte("snapshot")))

	p, exists := EntryPath([]string{"inv"}, "query")
	require.True(t, exists)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(p, past, past))

	entry, found := ReadFresh([]string{"inv"}, "query", time.Hour)

	assert.False(t, found)
	assert.Nil(t, entry)
	assert.FileExists(t, p)
}

// TestReadFresh_ZeroTTL verifies a non-positive TTL is always a miss.
func TestReadFresh_ZeroTTL(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("AWSCTL_CACHE_DIR", tmpDir)
	t.Setenv("AWSCTL_CACHE", "1")

	require.NoError(t, Write([]string{"inv"}, "query", []byte("snapshot")))

	_, found := ReadFresh([]string{"inv"}, "query", 0)

	assert.False(t, found)
}

// TestWrite_SuccessfulWrite verifies Write stores data correctly.
func TestWrite_SuccessfulWrite(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("AWSCTL_CACHE_DIR", tmpDir)
	t.Setenv("AWSCTL_CACHE", "1")

	testKey := "test-write-key"
	testData := []byte("test write data content")
	subdirs := []string{"cache", "data"}

	err := Write(subdirs, testKey, testData)

	assert.NoError(t, err)

	expectedDir := filepath.Join(tmpDir, "cache", "data")
	encoded := encodeKey(testKey)
	expectedPath := filepath.Join(expectedDir, encoded)
	assert.FileExists(t, expectedPath)

	content, err := os.ReadFile(expectedPath)
	assert.NoError(t, err)
	assert.Equal(t, testData, content)
}

// TestWrite_FilePermissions verifies Write creates files with 0600
// permissions (user read/write only).
func TestWrite_FilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("AWSCTL_CACHE_DIR", tmpDir)
	t.Setenv("AWSCTL_CACHE", "1")

	err := Write([]string{}, "perm-test-key", []byte("permission test data"))

	assert.NoError(t, err)

	encoded := encodeKey("perm-test-key")
	info, err := os.Stat(filepath.Join(tmpDir, encoded))
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

// TestPurge_RemovesOldFiles verifies Purge removes files older than
// specified hours.
func TestPurge_RemovesOldFiles(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("AWSCTL_CACHE_DIR", tmpDir)

	oldPath := filepath.Join(tmpDir, "old_file.txt")
	err := os.WriteFile(oldPath, []byte("old data"), 0o600)
	require.NoError(t, err)

	pastTime := time.Now().Add(-3 * time.Hour)
	err = os.Chtimes(oldPath, pastTime, pastTime)
	require.NoError(t, err)

	err = Purge(1)

	assert.NoError(t, err)
	assert.NoFileExists(t, oldPath)
}

// TestPurge_KeepsRecentFiles verifies Purge keeps files newer than
// specified hours.
func TestPurge_KeepsRecentFiles(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("AWSCTL_CACHE_DIR", tmpDir)

	recentPath := filepath.Join(tmpDir, "recent_file.txt")
	err := os.WriteFile(recentPath, []byte("recent data"), 0o600)
	require.NoError(t, err)

	err = Purge(1)

	assert.NoError(t, err)
	assert.FileExists(t, recentPath)
}

// TestPurge_DisabledWithZeroHours verifies Purge is no-op when hours <= 0.
func TestPurge_DisabledWithZeroHours(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("AWSCTL_CACHE_DIR", tmpDir)

	oldPath := filepath.Join(tmpDir, "old_file.txt")
	err := os.WriteFile(oldPath, []byte("data"), 0o600)
	require.NoError(t, err)

	err = Purge(0)

	assert.NoError(t, err)
	assert.FileExists(t, oldPath)
}

// TestEncodeKey verifies encodeKey is deterministic, collision-averse and
// hex shaped.
func TestEncodeKey(t *testing.T) {
	assert.Equal(t, encodeKey("k"), encodeKey("k"))
	assert.NotEqual(t, encodeKey("key-one"), encodeKey("key-two"))
	assert.Equal(t, 64, len(encodeKey("anything")))
}
