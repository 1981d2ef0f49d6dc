package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feyabloom/studio/pkg/content"
)

// 项目主分类.
const (
	CategoryFiberArts          = "Fiber Arts"
	CategoryTactileDreams      = "Tactile Dreams"
	CategoryVisualWorks        = "Visual Works"
	CategoryDigitalExperiences = "Digital Experiences"
	CategoryWrittenWorlds      = "Written Worlds"
)

// MainCategories 按展示顺序排列的主分类.
var MainCategories = []string{
	CategoryFiberArts,
	CategoryTactileDreams,
	CategoryVisualWorks,
	CategoryDigitalExperiences,
	CategoryWrittenWorlds,
}

// Links 项目外部链接.
type Links struct {
	Demo   string `json:"demo,omitempty"`
	Github string `json:"github,omitempty"`
	Buy    string `json:"buy,omitempty"`
}

// Project 作品集项目.
type Project struct {
	ID               string         `gorm:"primaryKey;size:36"             json:"id"`
	Title            string         `gorm:"size:255;not null"              json:"title"`
	MainCategory     string         `gorm:"size:64;index"                  json:"main_category"`
	Category         string         `gorm:"size:128;index"                 json:"category"`
	ShortDescription string         `gorm:"type:text"                      json:"short_description"`
	CoverImage       string         `gorm:"size:1024"                      json:"cover_image"`
	Year             string         `gorm:"size:16"                        json:"year"`
	Tags             []string       `gorm:"type:text;serializer:sonic"     json:"tags"`
	Content          content.Blocks `gorm:"type:text;serializer:sonic"     json:"content"`
	Links            Links          `gorm:"type:text;serializer:sonic"     json:"links"`
	Published        bool           `gorm:"index"                          json:"published"`
	OrderIndex       int            `gorm:"index"                          json:"order_index"`
	// 旧版字段，只读兼容
	FullDescription string    `gorm:"type:text"                 json:"full_description,omitempty"`
	Images          []string  `gorm:"type:text;serializer:sonic" json:"images,omitempty"`
	CreatedAt       time.Time `gorm:"index"                     json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate 生成项目 ID.
func (p *Project) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	if p.Tags == nil {
		p.Tags = []string{}
	}

	if p.Content == nil {
		p.Content = content.Blocks{}
	}

	return nil
}

// ImageURLs 返回项目引用的全部图片：封面、正文与旧版图片列表.
func (p *Project) ImageURLs() []string {
	var out []string

	if p.CoverImage != "" {
		out = append(out, p.CoverImage)
	}

	out = append(out, p.Content.ImageURLs()...)
	out = append(out, p.Images...)

	return out
}
