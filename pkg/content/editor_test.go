package content_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/content"
)

func sample(t *testing.T) content.Blocks {
	t.Helper()

	var (
		bs  content.Blocks
		err error
	)

	for _, typ := range []content.BlockType{content.TypeText, content.TypeGallery, content.TypeImage} {
		bs, err = bs.Add(typ)
		require.NoError(t, err)
	}

	return bs
}

// TestAdd 新增内容块，图集以空数组开始.
func TestAdd(t *testing.T) {
	bs := sample(t)

	require.Len(t, bs, 3)
	assert.Equal(t, []string{}, bs[1].Images)
	assert.Equal(t, []string{}, bs[1].Content())
	assert.Equal(t, "", bs[0].Content())

	_, err := bs.Add("carousel")
	assert.ErrorIs(t, err, content.ErrUnknownType)
}

// TestGalleryInvariant 向图集添加图片后 content 仍是数组；对非图集为空操作.
func TestGalleryInvariant(t *testing.T) {
	bs := sample(t)

	bs = bs.AddGalleryImage(1, "one.png")
	bs = bs.AddGalleryImages(1, []string{"two.png", "three.png"})
	assert.Equal(t, []string{"one.png", "two.png", "three.png"}, bs[1].Content())

	before := bs
	after := bs.AddGalleryImage(0, "x.png")
	assert.Equal(t, before, after)
	assert.Equal(t, "", after[0].Content())

	bs = bs.RemoveGalleryImage(1, 1)
	assert.Equal(t, []string{"one.png", "three.png"}, bs[1].Images)

	assert.Equal(t, bs, bs.RemoveGalleryImage(1, 9))
	assert.Equal(t, bs, bs.RemoveGalleryImage(2, 0))
}

// TestMove 上下移动交换相邻元素，越界为空操作.
func TestMove(t *testing.T) {
	bs := sample(t)

	up := bs.MoveUp(2)
	assert.Equal(t, content.TypeImage, up[1].Type)
	assert.Equal(t, content.TypeGallery, up[2].Type)

	assert.Equal(t, bs, bs.MoveUp(0))
	assert.Equal(t, bs, bs.MoveDown(2))

	down := bs.MoveDown(0)
	assert.Equal(t, content.TypeGallery, down[0].Type)
	assert.Equal(t, content.TypeText, down[1].Type)
}

// TestUpdateRemove 测试更新与删除.
func TestUpdateRemove(t *testing.T) {
	bs := sample(t)

	text := "Woven in wool"
	caption := "detail"

	out, err := bs.Update(0, content.Patch{Text: &text, Caption: &caption})
	require.NoError(t, err)
	assert.Equal(t, "Woven in wool", out[0].Text)
	assert.Equal(t, "detail", out[0].Caption)
	assert.Equal(t, "", bs[0].Text, "receiver must not change")

	_, err = bs.Update(1, content.Patch{Text: &text})
	assert.ErrorIs(t, err, content.ErrContentShape)

	imgs := []string{"x"}
	_, err = bs.Update(0, content.Patch{Images: &imgs})
	assert.ErrorIs(t, err, content.ErrContentShape)

	_, err = bs.Update(7, content.Patch{})
	assert.ErrorIs(t, err, content.ErrIndexOutOfRange)

	out = bs.Remove(1)
	require.Len(t, out, 2)
	assert.Equal(t, content.TypeImage, out[1].Type)
	assert.Len(t, bs.Remove(-1), 3)
}

// TestEmptyGalleryStaysArray 编辑其他内容块后空图集仍是空数组而不是 nil.
func TestEmptyGalleryStaysArray(t *testing.T) {
	bs := sample(t)
	text := "intro"

	out, err := bs.Update(0, content.Patch{Text: &text})
	require.NoError(t, err)
	assert.NotNil(t, out[1].Images)
	assert.Equal(t, []string{}, out[1].Images)

	for _, edited := range []content.Blocks{bs.MoveDown(0), bs.Remove(2), bs.RemoveGalleryImage(1, 0), bs.AddGalleryImage(0, "x.png")} {
		for _, b := range edited {
			if b.IsGallery() {
				assert.NotNil(t, b.Images)
			}
		}
	}

	loose := content.Blocks{{Type: content.TypeGallery}, {Type: content.TypeText}}
	out, err = loose.Update(1, content.Patch{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, []string{}, out[0].Images)
}

// TestApply 测试按操作名执行编辑.
func TestApply(t *testing.T) {
	bs := sample(t)

	out, err := bs.Apply(content.Op{Kind: content.OpAddGalleryImage, Index: 1, URL: "a.png"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png"}, out[1].Images)

	out, err = out.Apply(content.Op{Kind: content.OpAdd, Type: content.TypeButton})
	require.NoError(t, err)
	assert.Len(t, out, 4)

	_, err = out.Apply(content.Op{Kind: "shuffle"})
	assert.ErrorIs(t, err, content.ErrUnknownOp)

	assert.Equal(t, []string{"a.png"}, out.ImageURLs())
}
