package types

// UploadRequest 上传请求的表单字段，文件本身通过 multipart 的 files 字段提交.
type UploadRequest struct {
	Bucket  string `form:"bucket"`
	Path    string `form:"path"`
	Profile string `form:"profile"`
}

// UploadResult 单个文件的上传结果.
type UploadResult struct {
	Name        string `json:"name"`
	Key         string `json:"key,omitempty"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	PublicURL   string `json:"public_url,omitempty"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

// UploadResponse 上传响应，部分文件失败时其余文件仍会上传.
type UploadResponse struct {
	Bucket  string         `json:"bucket"`
	Profile string         `json:"profile"`
	Results []UploadResult `json:"results"`
	URLs    []string       `json:"urls"`
	Total   int            `json:"total"`
	Success int            `json:"success"`
	Failed  int            `json:"failed"`
}
