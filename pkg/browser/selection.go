package browser

import "sort"

// Selection 当前目录下被勾选的文件名集合.
//
// 选择集记录它所属的目录；目录切换后调用 Reset 清空，不会残留上一个目录的文件名.
type Selection struct {
	folder string
	names  map[string]struct{}
}

// NewSelection 创建属于 folder 目录的空选择集.
func NewSelection(folder string) *Selection {
	return &Selection{folder: Clean(folder), names: map[string]struct{}{}}
}

// Folder 返回选择集所属目录.
func (s *Selection) Folder() string {
	return s.folder
}

// Toggle 切换文件名的选中状态，返回切换后是否选中.
func (s *Selection) Toggle(name string) bool {
	if _, ok := s.names[name]; ok {
		delete(s.names, name)
		return false
	}

	s.names[name] = struct{}{}

	return true
}

// Select 选中文件名.
func (s *Selection) Select(names ...string) {
	for _, n := range names {
		s.names[n] = struct{}{}
	}
}

// Has 判断文件名是否被选中.
func (s *Selection) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Len 返回选中数量.
func (s *Selection) Len() int {
	return len(s.names)
}

// Clear 清空选择集，保留所属目录.
func (s *Selection) Clear() {
	s.names = map[string]struct{}{}
}

// Reset 清空选择集并切换所属目录.
func (s *Selection) Reset(folder string) {
	s.folder = Clean(folder)
	s.Clear()
}

// Names 返回排序后的文件名.
func (s *Selection) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}

	sort.Strings(out)

	return out
}

// Keys 返回选中文件的完整对象键，即 folder/name.
func (s *Selection) Keys() []string {
	names := s.Names()

	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, Join(s.folder, n))
	}

	return keys
}
