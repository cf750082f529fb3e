package dto

// ── 公告模块 DTO ──

// CreateAnnouncementRequest 新建公告
// 必填校验在 Service 层完成，以便统一返回 ErrValidation
type CreateAnnouncementRequest struct {
	Year    int      `json:"year"`
	Month   int      `json:"month"`
	Day     int      `json:"day"`
	Title   string   `json:"title"`
	PDFURL  string   `json:"pdfUrl"`
	Schools []string `json:"schools"`
}

// UpdateAnnouncementRequest 部分更新，nil 字段保持原值
type UpdateAnnouncementRequest struct {
	Year    *int      `json:"year"`
	Month   *int      `json:"month"`
	Day     *int      `json:"day"`
	Title   *string   `json:"title"`
	PDFURL  *string   `json:"pdfUrl"`
	Schools *[]string `json:"schools"`
}

// AnnouncementResponse 公告
type AnnouncementResponse struct {
	ID           int64    `json:"id"`
	Year         int      `json:"year"`
	Month        int      `json:"month"`
	Day          int      `json:"day"`
	Title        string   `json:"title"`
	PDFURL       string   `json:"pdfUrl"`
	HasPDF       bool     `json:"hasPdf"`
	Schools      []string `json:"schools"`
	SchoolNames  []string `json:"schoolNames"`
	SchoolColors []string `json:"schoolColors"`
}

// MonthGroupResponse 按年月分组的公告
type MonthGroupResponse struct {
	Year  int                    `json:"year"`
	Month int                    `json:"month"`
	Items []AnnouncementResponse `json:"items"`
}

// AnnouncementViewResponse GET /announcements/view
type AnnouncementViewResponse struct {
	Groups []MonthGroupResponse `json:"groups"`
	Empty  bool                 `json:"empty"`
	Filter []string             `json:"filter"`
}

// OpenPDFResponse POST /announcements/:id/pdf
type OpenPDFResponse struct {
	Uploaded bool   `json:"uploaded"`
	URL      string `json:"url,omitempty"`
	Message  string `json:"message,omitempty"`
}
