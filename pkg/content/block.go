// Package content 定义项目正文的内容块（文本、图片、图集、视频、引用、按钮）及其编辑操作.
//
// 内容块的 content 字段只有图集是字符串数组，其他类型都是字符串；Block 在 JSON 编解码时保证这一点.
package content

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// BlockType 内容块类型.
type BlockType string

const (
	TypeText    BlockType = "text"
	TypeImage   BlockType = "image"
	TypeGallery BlockType = "gallery"
	TypeVideo   BlockType = "video"
	TypeQuote   BlockType = "quote"
	TypeButton  BlockType = "button"
)

// Types 所有支持的内容块类型，按编辑器菜单顺序排列.
var Types = []BlockType{TypeText, TypeImage, TypeGallery, TypeVideo, TypeQuote, TypeButton}

var (
	// ErrUnknownType 未知的内容块类型.
	ErrUnknownType = errors.New("unknown block type")
	// ErrContentShape content 的形状与类型不符.
	ErrContentShape = errors.New("block content does not match its type")
	// ErrIndexOutOfRange 内容块下标越界.
	ErrIndexOutOfRange = errors.New("block index out of range")
)

// Valid 判断类型是否受支持.
func (t BlockType) Valid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}

	return false
}

// Block 单个内容块.
//
// Text 用于非图集类型，Images 只用于图集.
type Block struct {
	Type    BlockType
	Text    string
	Images  []string
	Caption string
	Href    string
}

// NewBlock 创建空内容块，图集以空数组开始.
func NewBlock(t BlockType) (Block, error) {
	if !t.Valid() {
		return Block{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	b := Block{Type: t}
	if t == TypeGallery {
		b.Images = []string{}
	}

	return b, nil
}

// IsGallery 是否为图集.
func (b Block) IsGallery() bool {
	return b.Type == TypeGallery
}

// Content 返回 content 字段的值：图集为 []string，其他为 string.
func (b Block) Content() any {
	if b.IsGallery() {
		if b.Images == nil {
			return []string{}
		}

		return b.Images
	}

	return b.Text
}

// wireBlock JSON 表示.
type wireBlock struct {
	Type    BlockType `json:"type"`
	Content any       `json:"content"`
	Caption string    `json:"caption"`
	Href    string    `json:"href"`
}

// MarshalJSON 实现 json.Marshaler.
func (b Block) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(wireBlock{
		Type:    b.Type,
		Content: b.Content(),
		Caption: b.Caption,
		Href:    b.Href,
	})
}

// UnmarshalJSON 实现 json.Unmarshaler.
//
// 图集收到字符串时，非空字符串被包装为单元素数组；非图集收到数组时返回 ErrContentShape.
func (b *Block) UnmarshalJSON(data []byte) error {
	var w wireBlock
	if err := sonic.Unmarshal(data, &w); err != nil {
		return err
	}

	if !w.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}

	out := Block{Type: w.Type, Caption: w.Caption, Href: w.Href}

	switch v := w.Content.(type) {
	case nil:
		if out.IsGallery() {
			out.Images = []string{}
		}
	case string:
		if out.IsGallery() {
			out.Images = []string{}
			if v != "" {
				out.Images = append(out.Images, v)
			}
		} else {
			out.Text = v
		}
	case []any:
		if !out.IsGallery() {
			return fmt.Errorf("%w: %s block with array content", ErrContentShape, out.Type)
		}

		out.Images = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("%w: gallery items must be strings", ErrContentShape)
			}

			out.Images = append(out.Images, s)
		}
	default:
		return fmt.Errorf("%w: unsupported content %T", ErrContentShape, w.Content)
	}

	*b = out

	return nil
}
