package content

import (
	"fmt"
	"slices"
)

// Blocks 有序的内容块列表.
//
// 所有编辑方法都返回新的列表，不修改接收者.
type Blocks []Block

// Patch 对单个内容块的部分更新，nil 字段保持不变.
type Patch struct {
	Text    *string   `json:"text,omitempty"`
	Images  *[]string `json:"images,omitempty"`
	Caption *string   `json:"caption,omitempty"`
	Href    *string   `json:"href,omitempty"`
}

func (bs Blocks) clone() Blocks {
	out := make(Blocks, len(bs))
	copy(out, bs)

	for i := range out {
		switch {
		case out[i].Images != nil:
			out[i].Images = slices.Clone(out[i].Images)
		case out[i].IsGallery():
			out[i].Images = []string{}
		}
	}

	return out
}

func (bs Blocks) inRange(i int) bool {
	return i >= 0 && i < len(bs)
}

// Add 在末尾追加一个空内容块.
func (bs Blocks) Add(t BlockType) (Blocks, error) {
	b, err := NewBlock(t)
	if err != nil {
		return bs, err
	}

	return append(bs.clone(), b), nil
}

// Update 部分更新第 index 个内容块.
func (bs Blocks) Update(index int, p Patch) (Blocks, error) {
	if !bs.inRange(index) {
		return bs, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	out := bs.clone()
	b := &out[index]

	if p.Text != nil {
		if b.IsGallery() {
			return bs, fmt.Errorf("%w: gallery content must be a list", ErrContentShape)
		}

		b.Text = *p.Text
	}

	if p.Images != nil {
		if !b.IsGallery() {
			return bs, fmt.Errorf("%w: %s block content must be a string", ErrContentShape, b.Type)
		}

		b.Images = append([]string{}, (*p.Images)...)
	}

	if p.Caption != nil {
		b.Caption = *p.Caption
	}

	if p.Href != nil {
		b.Href = *p.Href
	}

	return out, nil
}

// Remove 删除第 index 个内容块，越界时不变.
func (bs Blocks) Remove(index int) Blocks {
	if !bs.inRange(index) {
		return bs
	}

	out := bs.clone()

	return append(out[:index], out[index+1:]...)
}

// MoveUp 与前一个内容块交换位置，越界时不变.
func (bs Blocks) MoveUp(index int) Blocks {
	return bs.swap(index, index-1)
}

// MoveDown 与后一个内容块交换位置，越界时不变.
func (bs Blocks) MoveDown(index int) Blocks {
	return bs.swap(index, index+1)
}

func (bs Blocks) swap(i, j int) Blocks {
	if !bs.inRange(i) || !bs.inRange(j) {
		return bs
	}

	out := bs.clone()
	out[i], out[j] = out[j], out[i]

	return out
}

// AddGalleryImage 向图集追加一张图片，非图集时不变.
func (bs Blocks) AddGalleryImage(blockIndex int, url string) Blocks {
	return bs.AddGalleryImages(blockIndex, []string{url})
}

// AddGalleryImages 向图集追加多张图片，非图集时不变.
func (bs Blocks) AddGalleryImages(blockIndex int, urls []string) Blocks {
	if !bs.inRange(blockIndex) || !bs[blockIndex].IsGallery() {
		return bs
	}

	out := bs.clone()
	if out[blockIndex].Images == nil {
		out[blockIndex].Images = []string{}
	}

	out[blockIndex].Images = append(out[blockIndex].Images, urls...)

	return out
}

// RemoveGalleryImage 删除图集中第 imageIndex 张图片，非图集或越界时不变.
func (bs Blocks) RemoveGalleryImage(blockIndex, imageIndex int) Blocks {
	if !bs.inRange(blockIndex) || !bs[blockIndex].IsGallery() {
		return bs
	}

	imgs := bs[blockIndex].Images
	if imageIndex < 0 || imageIndex >= len(imgs) {
		return bs
	}

	out := bs.clone()
	kept := make([]string, 0, len(imgs)-1)
	kept = append(kept, imgs[:imageIndex]...)
	kept = append(kept, imgs[imageIndex+1:]...)
	out[blockIndex].Images = kept

	return out
}

// ImageURLs 返回所有图片、图集与视频块引用的地址，用于统计媒体引用.
func (bs Blocks) ImageURLs() []string {
	var urls []string

	for _, b := range bs {
		switch b.Type {
		case TypeImage, TypeVideo:
			if b.Text != "" {
				urls = append(urls, b.Text)
			}
		case TypeGallery:
			urls = append(urls, b.Images...)
		}
	}

	return urls
}
