// Package browser 把扁平的对象键空间映射为目录树：路径拼接、面包屑、标记对象与选择集.
//
// 所有 "a/b/c" 形式的前缀约定集中在本包，服务层不直接拼接对象键.
package browser

import (
	"path"
	"strings"
)

const (
	// Separator 对象键中的目录分隔符.
	Separator = "/"
	// KeepMarker 空目录标记对象（零字节）.
	KeepMarker = ".keep"
	// PlaceholderMarker 图片存储桶使用的 1x1 透明 PNG 标记对象.
	PlaceholderMarker = ".placeholder.png"
)

// markers 列举时需要隐藏的标记文件名.
var markers = map[string]struct{}{
	KeepMarker:        {},
	PlaceholderMarker: {},
}

// IsMarker 判断文件名是否为目录标记对象.
func IsMarker(name string) bool {
	_, ok := markers[name]
	return ok
}

// Clean 去掉首尾分隔符并折叠重复的分隔符，"" 表示根目录.
func Clean(p string) string {
	parts := Segments(p)
	return strings.Join(parts, Separator)
}

// Segments 把路径拆分为非空片段.
func Segments(p string) []string {
	raw := strings.Split(p, Separator)
	out := make([]string, 0, len(raw))

	for _, s := range raw {
		if s != "" {
			out = append(out, s)
		}
	}

	return out
}

// Join 拼接目录与名称，根目录下不带前导分隔符.
func Join(dir string, names ...string) string {
	parts := Segments(dir)
	for _, n := range names {
		parts = append(parts, Segments(n)...)
	}

	return strings.Join(parts, Separator)
}

// Split 把对象键拆分为所在目录与文件名.
func Split(key string) (dir, name string) {
	key = Clean(key)

	i := strings.LastIndex(key, Separator)
	if i < 0 {
		return "", key
	}

	return key[:i], key[i+1:]
}

// Prefix 返回用于列举目录内容的前缀，根目录为 ""，其他目录以分隔符结尾.
func Prefix(dir string) string {
	dir = Clean(dir)
	if dir == "" {
		return ""
	}

	return dir + Separator
}

// Parent 返回上一级目录，根目录的上一级仍为根目录.
func Parent(dir string) string {
	d, _ := Split(dir)
	return d
}

// Ext 返回文件扩展名（含点），没有扩展名时为空.
func Ext(name string) string {
	if strings.HasPrefix(name, ".") && strings.Count(name, ".") == 1 {
		return ""
	}

	return path.Ext(name)
}

// Base 返回去掉扩展名的文件名.
func Base(name string) string {
	return strings.TrimSuffix(name, Ext(name))
}

// ValidName 判断名称能否作为单个目录或文件名：非空，不含分隔符，不是 . 或 ..
func ValidName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return false
	}

	return !strings.Contains(name, Separator)
}

// IsWithin 判断 key 是否位于 dir 目录（任意深度）下.
func IsWithin(key, dir string) bool {
	p := Prefix(dir)
	if p == "" {
		return true
	}

	return strings.HasPrefix(Clean(key), p)
}
