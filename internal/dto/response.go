package dto

// ── 通用响应 ──

// MessageResponse 仅含提示信息的响应体
type MessageResponse struct {
	Message string `json:"message"`
}

// SchoolResponse 教室
type SchoolResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Type     string `json:"type"`
	Color    string `json:"color"`
}

// LocationResponse 所在地分组
type LocationResponse struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Schools []string `json:"schools"`
}

// SchoolCatalogResponse GET /schools
type SchoolCatalogResponse struct {
	Schools   []SchoolResponse   `json:"schools"`
	Locations []LocationResponse `json:"locations"`
}

// UploadResponse 上传成功响应
type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
