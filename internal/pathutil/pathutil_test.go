package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeForwardSlashes(t *testing.T) {
	assert.Equal(t, "a/b/c", Normalize(`a\b\c`)) // backslashes become forward slashes on every platform, not only on Windows
}

func TestToRelativeInsideRoot(t *testing.T) {
	got := ToRelative("/home/user/project/src/main.go", "/home/user/project")
	assert.Equal(t, "src/main.go", got)
}

func TestToRelativeOutsideRoot(t *testing.T) {
	got := ToRelative("/other/location/file.go", "/home/user/project")
	assert.Equal(t, "/other/location/file.go", got)
}

func TestToRelativeAlreadyRelative(t *testing.T) {
	assert.Equal(t, "src/main.go", ToRelative("src/main.go", "/home/user/project"))
}

func TestHasPrefixDirExactRoot(t *testing.T) {
	assert.True(t, HasPrefixDir("/root/project", "/root/project"))
}

func TestHasPrefixDirProperSubdir(t *testing.T) {
	assert.True(t, HasPrefixDir("/root/project/sub", "/root/project"))
}

func TestHasPrefixDirRejectsSiblingWithSharedPrefix(t *testing.T) {
	assert.False(t, HasPrefixDir("/root/projectx", "/root/project"))
}

func TestHasPrefixDirCaseInsensitive(t *testing.T) {
	assert.True(t, HasPrefixDir("/Root/Project/Sub", "/root/project"))
}
