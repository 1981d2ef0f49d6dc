package content_test

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feyabloom/studio/pkg/content"
)

// TestBlockJSONShape 图集的 content 编码为数组，其他类型编码为字符串.
func TestBlockJSONShape(t *testing.T) {
	gallery, err := content.NewBlock(content.TypeGallery)
	require.NoError(t, err)

	data, err := sonic.Marshal(gallery)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"gallery","content":[],"caption":"","href":""}`, string(data))

	quote := content.Block{Type: content.TypeQuote, Text: "bloom", Caption: "Feya"}
	data, err = sonic.Marshal(quote)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"quote","content":"bloom","caption":"Feya","href":""}`, string(data))
}

// TestBlockUnmarshal 测试解码时的形状约束.
func TestBlockUnmarshal(t *testing.T) {
	var b content.Block

	require.NoError(t, sonic.Unmarshal([]byte(`{"type":"gallery","content":["a.png","b.png"]}`), &b))
	assert.Equal(t, []string{"a.png", "b.png"}, b.Images)

	require.NoError(t, sonic.Unmarshal([]byte(`{"type":"gallery","content":"a.png"}`), &b))
	assert.Equal(t, []string{"a.png"}, b.Images)

	require.NoError(t, sonic.Unmarshal([]byte(`{"type":"gallery","content":""}`), &b))
	assert.Equal(t, []string{}, b.Images)

	require.NoError(t, sonic.Unmarshal([]byte(`{"type":"button","content":"Buy","href":"https://shop"}`), &b))
	assert.Equal(t, "Buy", b.Text)
	assert.Equal(t, "https://shop", b.Href)

	err := sonic.Unmarshal([]byte(`{"type":"text","content":["x"]}`), &b)
	assert.ErrorIs(t, err, content.ErrContentShape)

	err = sonic.Unmarshal([]byte(`{"type":"poster","content":"x"}`), &b)
	assert.ErrorIs(t, err, content.ErrUnknownType)
}

// TestBlocksRoundTrip 列表编解码后保持不变.
func TestBlocksRoundTrip(t *testing.T) {
	in := content.Blocks{
		{Type: content.TypeText, Text: "hello\nworld"},
		{Type: content.TypeGallery, Images: []string{"a", "b"}},
	}

	data, err := sonic.Marshal(in)
	require.NoError(t, err)

	var out content.Blocks
	require.NoError(t, sonic.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
