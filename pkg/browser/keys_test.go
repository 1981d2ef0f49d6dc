package browser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feyabloom/studio/pkg/browser"
)

// TestJoinSplit 测试路径拼接与拆分.
func TestJoinSplit(t *testing.T) {
	assert.Equal(t, "a.png", browser.Join("", "a.png"))
	assert.Equal(t, "x/y/a.png", browser.Join("x/y", "a.png"))
	assert.Equal(t, "x/y/a.png", browser.Join("/x//y/", "/a.png"))

	dir, name := browser.Split("x/y/a.png")
	assert.Equal(t, "x/y", dir)
	assert.Equal(t, "a.png", name)

	dir, name = browser.Split("a.png")
	assert.Equal(t, "", dir)
	assert.Equal(t, "a.png", name)
}

// TestPrefix 根目录前缀为空，其他目录以分隔符结尾.
func TestPrefix(t *testing.T) {
	assert.Equal(t, "", browser.Prefix(""))
	assert.Equal(t, "", browser.Prefix("/"))
	assert.Equal(t, "a/b/", browser.Prefix("a/b"))
	assert.Equal(t, "a/b/", browser.Prefix("/a/b/"))
	assert.Equal(t, "a", browser.Parent("a/b"))
	assert.Equal(t, "", browser.Parent("a"))
}

// TestMarkers 测试标记对象识别.
func TestMarkers(t *testing.T) {
	assert.True(t, browser.IsMarker(".keep"))
	assert.True(t, browser.IsMarker(".placeholder.png"))
	assert.False(t, browser.IsMarker("keep"))
	assert.False(t, browser.IsMarker("photo.png"))
}

// TestExtBase 测试扩展名拆分.
func TestExtBase(t *testing.T) {
	assert.Equal(t, ".png", browser.Ext("photo.png"))
	assert.Equal(t, ".gz", browser.Ext("backup.tar.gz"))
	assert.Equal(t, "", browser.Ext("README"))
	assert.Equal(t, "", browser.Ext(".keep"))
	assert.Equal(t, "photo", browser.Base("photo.png"))
	assert.Equal(t, ".keep", browser.Base(".keep"))
}

// TestValidName 测试名称合法性.
func TestValidName(t *testing.T) {
	assert.True(t, browser.ValidName("summer"))
	assert.False(t, browser.ValidName(""))
	assert.False(t, browser.ValidName("   "))
	assert.False(t, browser.ValidName(".."))
	assert.False(t, browser.ValidName("a/b"))
}

// TestIsWithin 测试目录包含关系.
func TestIsWithin(t *testing.T) {
	assert.True(t, browser.IsWithin("a/b/c.png", "a"))
	assert.True(t, browser.IsWithin("a/b/c.png", ""))
	assert.False(t, browser.IsWithin("ab/c.png", "a"))
	assert.False(t, browser.IsWithin("a", "a"))
}
