package browser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feyabloom/studio/pkg/browser"
)

// TestSelectionToggle 测试勾选与取消.
func TestSelectionToggle(t *testing.T) {
	sel := browser.NewSelection("art")

	assert.True(t, sel.Toggle("a.png"))
	assert.True(t, sel.Toggle("b.png"))
	assert.False(t, sel.Toggle("a.png"))

	assert.Equal(t, []string{"b.png"}, sel.Names())
	assert.Equal(t, []string{"art/b.png"}, sel.Keys())

	sel.Clear()
	assert.Zero(t, sel.Len())
	assert.Equal(t, "art", sel.Folder())
}

// TestSelectionRootKeys 根目录下的对象键不带前导分隔符.
func TestSelectionRootKeys(t *testing.T) {
	sel := browser.NewSelection("")
	sel.Select("c.png", "a.png", "b.png")

	assert.Equal(t, []string{"a.png", "b.png", "c.png"}, sel.Keys())
}

// TestSelectionClearedOnNavigation 导航后选择集被清空并记录新目录.
func TestSelectionClearedOnNavigation(t *testing.T) {
	nav := browser.NewNavigator("")
	sel := browser.NewSelection(nav.Path())
	nav.OnChange(func(_, to string) { sel.Reset(to) })

	sel.Select("a.png")
	nav.OpenFolder("photos")

	assert.Zero(t, sel.Len())
	assert.Equal(t, "photos", sel.Folder())
	assert.False(t, sel.Has("a.png"))
}
