package types

import (
	"github.com/feyabloom/studio/pkg/content"
	"github.com/feyabloom/studio/pkg/internal/model"
)

// ProjectRequest 新建或更新项目的请求体.
type ProjectRequest struct {
	Title            string         `json:"title"             label:"Title"         rule:"notblank,max=255"`
	MainCategory     string         `json:"main_category"     label:"Main category" rule:"required,oneof='Fiber Arts' 'Tactile Dreams' 'Visual Works' 'Digital Experiences' 'Written Worlds'"`
	Category         string         `json:"category"          rule:"max=128"`
	ShortDescription string         `json:"short_description"`
	CoverImage       string         `json:"cover_image"       rule:"max=1024"`
	Year             string         `json:"year"              rule:"max=16"`
	Tags             []string       `json:"tags"`
	Content          content.Blocks `json:"content"`
	Links            model.Links    `json:"links"`
	Published        bool           `json:"published"`
	OrderIndex       int            `json:"order_index"`
}

// ProjectsResponse 项目列表.
type ProjectsResponse struct {
	Projects []model.Project `json:"projects"`
	Total    int             `json:"total"`
}

// CategoriesResponse 主分类列表.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
