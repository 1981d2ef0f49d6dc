package browser

import "strings"

// Crumb 面包屑中的一段.
type Crumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Navigator 维护当前目录，currentPath 不含首尾分隔符，根目录为 "".
//
// Navigator 不校验目录是否存在；目录被外部删除后，列举结果为空即可.
type Navigator struct {
	current []string
	// onChange 在每次目录变化后调用，用于清空选择集
	onChange func(from, to string)
}

// NewNavigator 创建位于 start 目录的导航器.
func NewNavigator(start string) *Navigator {
	return &Navigator{current: Segments(start)}
}

// OnChange 注册目录变化回调.
func (n *Navigator) OnChange(fn func(from, to string)) {
	n.onChange = fn
}

// Path 返回当前目录.
func (n *Navigator) Path() string {
	return Join("", n.current...)
}

// AtRoot 是否位于根目录.
func (n *Navigator) AtRoot() bool {
	return len(n.current) == 0
}

// OpenFolder 进入子目录，非法名称被忽略.
func (n *Navigator) OpenFolder(name string) {
	name = strings.TrimSpace(name)
	if !ValidName(name) {
		return
	}

	n.set(append(n.clone(), name))
}

// GoBack 返回上一级，根目录下为空操作.
func (n *Navigator) GoBack() {
	if n.AtRoot() {
		return
	}

	n.set(n.clone()[:len(n.current)-1])
}

// GoToRoot 回到根目录.
func (n *Navigator) GoToRoot() {
	n.set(nil)
}

// NavigateTo 跳转到第 index 个面包屑（从 0 开始），越界为空操作.
func (n *Navigator) NavigateTo(index int) {
	if index < 0 || index >= len(n.current) {
		return
	}

	n.set(n.clone()[:index+1])
}

// Breadcrumbs 返回从根到当前目录的各级面包屑，不含根目录本身.
func (n *Navigator) Breadcrumbs() []Crumb {
	crumbs := make([]Crumb, 0, len(n.current))
	for i, seg := range n.current {
		crumbs = append(crumbs, Crumb{Name: seg, Path: Join("", n.current[:i+1]...)})
	}

	return crumbs
}

// Breadcrumbs 根据任意路径计算面包屑.
func Breadcrumbs(p string) []Crumb {
	return NewNavigator(p).Breadcrumbs()
}

func (n *Navigator) clone() []string {
	out := make([]string, len(n.current))
	copy(out, n.current)

	return out
}

func (n *Navigator) set(next []string) {
	from := n.Path()
	n.current = next

	if n.onChange != nil {
		n.onChange(from, n.Path())
	}
}
