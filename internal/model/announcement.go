package model

// Announcement 公告，全部公告以 JSON 数组存放于文档 announcements
type Announcement struct {
	ID      int64     `json:"id"`
	Year    int       `json:"year"`
	Month   int       `json:"month"`
	Day     int       `json:"day"`
	Title   string    `json:"title"`
	PDFURL  string    `json:"pdfUrl"`  // 空串表示尚未上传
	Schools SchoolSet `json:"schools"` // 空集合表示面向所有人
}

// HasPDF 是否已上传 PDF
func (a *Announcement) HasPDF() bool {
	return a.PDFURL != ""
}

// DateKey 用于按日期排序的整数键 yyyymmdd
func (a *Announcement) DateKey() int {
	return a.Year*10000 + a.Month*100 + a.Day
}

// VisibleTo 在教室筛选条件下是否可见：
// 未筛选、未打标签、或标签与筛选有交集
func (a *Announcement) VisibleTo(filter SchoolSet) bool {
	return len(filter) == 0 || len(a.Schools) == 0 || a.Schools.Intersects(filter)
}
