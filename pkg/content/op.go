package content

import (
	"errors"
	"fmt"
)

// OpKind 编辑操作名称，供 HTTP 接口使用.
type OpKind string

const (
	OpAdd                OpKind = "add"
	OpUpdate             OpKind = "update"
	OpRemove             OpKind = "remove"
	OpMoveUp             OpKind = "move_up"
	OpMoveDown           OpKind = "move_down"
	OpAddGalleryImage    OpKind = "gallery_add"
	OpAddGalleryImages   OpKind = "gallery_add_many"
	OpRemoveGalleryImage OpKind = "gallery_remove"
)

// Op 一次内容块编辑.
type Op struct {
	Kind       OpKind    `json:"op"                    binding:"required"`
	Type       BlockType `json:"type,omitempty"`
	Index      int       `json:"index"`
	ImageIndex int       `json:"image_index,omitempty"`
	URL        string    `json:"url,omitempty"`
	URLs       []string  `json:"urls,omitempty"`
	Patch      Patch     `json:"patch"`
}

// ErrUnknownOp 未知的编辑操作.
var ErrUnknownOp = errors.New("unknown block op")

// Apply 对列表执行一次编辑.
func (bs Blocks) Apply(op Op) (Blocks, error) {
	switch op.Kind {
	case OpAdd:
		return bs.Add(op.Type)
	case OpUpdate:
		return bs.Update(op.Index, op.Patch)
	case OpRemove:
		return bs.Remove(op.Index), nil
	case OpMoveUp:
		return bs.MoveUp(op.Index), nil
	case OpMoveDown:
		return bs.MoveDown(op.Index), nil
	case OpAddGalleryImage:
		return bs.AddGalleryImage(op.Index, op.URL), nil
	case OpAddGalleryImages:
		return bs.AddGalleryImages(op.Index, op.URLs), nil
	case OpRemoveGalleryImage:
		return bs.RemoveGalleryImage(op.Index, op.ImageIndex), nil
	default:
		return bs, fmt.Errorf("%w: %q", ErrUnknownOp, op.Kind)
	}
}
