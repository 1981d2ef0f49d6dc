package service

import (
	"context"

	"github.com/feyabloom/studio/pkg/browser"
	"github.com/feyabloom/studio/pkg/internal/types"
)

// BrowserSession 一个媒体库浏览会话：当前存储桶、当前目录与选择集.
// 任何目录切换（包括切换存储桶）都会清空选择集.
type BrowserSession struct {
	svc    *MediaService
	bucket string
	nav    *browser.Navigator
	sel    *browser.Selection
}

// NewSession 创建位于 bucket 根目录的会话，bucket 为空时使用默认存储桶.
func (s *MediaService) NewSession(bucket string) (*BrowserSession, error) {
	b, err := s.Bucket(bucket)
	if err != nil {
		return nil, err
	}

	sess := &BrowserSession{
		svc:    s,
		bucket: b,
		nav:    browser.NewNavigator(""),
		sel:    browser.NewSelection(""),
	}
	sess.nav.OnChange(func(_, to string) { sess.sel.Reset(to) })

	return sess, nil
}

// Bucket 当前存储桶.
func (b *BrowserSession) Bucket() string { return b.bucket }

// Path 当前目录.
func (b *BrowserSession) Path() string { return b.nav.Path() }

// Breadcrumbs 当前目录的面包屑.
func (b *BrowserSession) Breadcrumbs() []browser.Crumb { return b.nav.Breadcrumbs() }

// SwitchBucket 切换存储桶并回到根目录.
func (b *BrowserSession) SwitchBucket(name string) error {
	bucket, err := b.svc.Bucket(name)
	if err != nil {
		return err
	}

	b.bucket = bucket
	b.nav.GoToRoot()
	b.sel.Reset("")

	return nil
}

// Open 进入子目录.
func (b *BrowserSession) Open(name string) { b.nav.OpenFolder(name) }

// Back 返回上一级.
func (b *BrowserSession) Back() { b.nav.GoBack() }

// Root 回到根目录.
func (b *BrowserSession) Root() { b.nav.GoToRoot() }

// NavigateTo 跳转到面包屑.
func (b *BrowserSession) NavigateTo(index int) { b.nav.NavigateTo(index) }

// Toggle 切换当前目录下文件的选中状态.
func (b *BrowserSession) Toggle(name string) bool { return b.sel.Toggle(name) }

// Select 选中当前目录下的文件.
func (b *BrowserSession) Select(names ...string) { b.sel.Select(names...) }

// Unselect 取消选中.
func (b *BrowserSession) Unselect(names ...string) {
	for _, n := range names {
		if b.sel.Has(n) {
			b.sel.Toggle(n)
		}
	}
}

// Selected 已选中的文件名.
func (b *BrowserSession) Selected() []string { return b.sel.Names() }

// ClearSelection 清空选择集.
func (b *BrowserSession) ClearSelection() { b.sel.Clear() }

// List 列举当前目录.
func (b *BrowserSession) List(ctx context.Context, search string) (*types.ListMediaResponse, error) {
	return b.svc.List(ctx, &types.ListMediaRequest{Bucket: b.bucket, Path: b.Path(), Search: search})
}

// DeleteSelected 在一次 Remove 调用中删除所有选中文件，成功后清空选择集.
func (b *BrowserSession) DeleteSelected(ctx context.Context) (*types.DeleteResponse, error) {
	keys := b.sel.Keys()
	if len(keys) == 0 {
		return &types.DeleteResponse{Bucket: b.bucket, Deleted: []string{}}, nil
	}

	resp, err := b.svc.Delete(ctx, &types.DeleteRequest{Bucket: b.bucket, Paths: keys})
	if err != nil {
		return nil, err
	}

	b.sel.Clear()

	return resp, nil
}

// MoveSelected 把选中文件逐个移动到 dest 目录，返回逐项结果并清空选择集.
func (b *BrowserSession) MoveSelected(ctx context.Context, dest string) (*types.MoveResponse, error) {
	resp := &types.MoveResponse{Bucket: b.bucket, Results: make([]types.MoveResult, 0, b.sel.Len())}

	for _, key := range b.sel.Keys() {
		res, err := b.svc.MoveFile(ctx, b.bucket, key, dest)
		if err != nil {
			resp.Add(types.MoveResult{From: key, Error: err.Error()})
			continue
		}

		resp.Add(*res)
	}

	b.sel.Clear()

	return resp, nil
}

// CreateFolder 在当前目录下新建目录.
func (b *BrowserSession) CreateFolder(ctx context.Context, name string) (*types.CreateFolderResponse, error) {
	return b.svc.CreateFolder(ctx, &types.CreateFolderRequest{Bucket: b.bucket, Path: b.Path(), Name: name})
}

// Rename 重命名当前目录下的文件.
func (b *BrowserSession) Rename(ctx context.Context, name, newName string) (*types.MoveResult, error) {
	return b.svc.Rename(ctx, &types.RenameRequest{
		Bucket:  b.bucket,
		Path:    browser.Join(b.Path(), name),
		NewName: newName,
	})
}

// RemoveFolder 递归删除当前目录下的子目录.
func (b *BrowserSession) RemoveFolder(ctx context.Context, name string) (*types.DeleteFolderResponse, error) {
	return b.svc.DeleteFolder(ctx, &types.DeleteFolderRequest{Bucket: b.bucket, Path: browser.Join(b.Path(), name)})
}
