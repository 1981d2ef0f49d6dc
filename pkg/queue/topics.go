package queue

// 主题命名规范：studio.<域>.<动作>，尽量稳定且向后兼容.
// 域：media(媒体库对象)、project(项目目录)、contact(联系表单)

const (
	// 媒体库领域.
	TopicMediaUploaded      = "studio.media.uploaded"       // 文件写入存储桶
	TopicMediaDeleted       = "studio.media.deleted"        // 一个或多个文件被删除
	TopicMediaMoved         = "studio.media.moved"          // 文件重命名或移动完成
	TopicMediaFolderCreated = "studio.media.folder.created" // 创建目录（标记对象）
	TopicMediaFolderDeleted = "studio.media.folder.deleted" // 递归删除目录

	// 项目目录领域.
	TopicProjectSaved   = "studio.project.saved"   // 项目新建或更新
	TopicProjectDeleted = "studio.project.deleted" // 项目删除

	// 联系表单领域.
	TopicContactSent = "studio.contact.sent" // 联系表单已转发
)

// MediaTopics 媒体库全部主题.
var MediaTopics = []string{
	TopicMediaUploaded,
	TopicMediaDeleted,
	TopicMediaMoved,
	TopicMediaFolderCreated,
	TopicMediaFolderDeleted,
}

// ProjectTopics 项目目录全部主题.
var ProjectTopics = []string{TopicProjectSaved, TopicProjectDeleted}

// AllTopics 返回全部主题.
func AllTopics() []string {
	out := make([]string, 0, len(MediaTopics)+len(ProjectTopics)+1)
	out = append(out, MediaTopics...)
	out = append(out, ProjectTopics...)

	return append(out, TopicContactSent)
}
