package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/dto"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/service"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/response"
)

// AnnouncementHandler 公告模块 HTTP 处理器
type AnnouncementHandler struct {
	annSvc service.AnnouncementService
}

// NewAnnouncementHandler 创建 AnnouncementHandler
func NewAnnouncementHandler(annSvc service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{annSvc: annSvc}
}

// ListAnnouncements 全部公告（日期降序）
// GET /api/v1/announcements
func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	list, err := h.annSvc.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	items := make([]dto.AnnouncementResponse, 0, len(list))
	for i := range list {
		items = append(items, toAnnouncementResponse(&list[i]))
	}
	response.OK(c, items)
}

// ViewAnnouncements 按年月分组的公告
// GET /api/v1/announcements/view?schools=a,b
//
// 未携带 schools 参数时使用会话的默认筛选；携带空值表示不筛选。
func (h *AnnouncementHandler) ViewAnnouncements(c *gin.Context) {
	session, ok := MustGetSession(c)
	if !ok {
		return
	}

	var filter model.SchoolSet
	if raw, present := c.GetQuery("schools"); present {
		filter = model.ParseSchoolList(raw)
	} else {
		filter = service.DefaultSchoolFilter(session)
	}

	groups, err := h.annSvc.View(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := dto.AnnouncementViewResponse{
		Groups: make([]dto.MonthGroupResponse, 0, len(groups)),
		Empty:  len(groups) == 0,
		Filter: filter.Sorted(),
	}
	for _, g := range groups {
		mg := dto.MonthGroupResponse{Year: g.Year, Month: g.Month, Items: make([]dto.AnnouncementResponse, 0, len(g.Items))}
		for i := range g.Items {
			mg.Items = append(mg.Items, toAnnouncementResponse(&g.Items[i]))
		}
		resp.Groups = append(resp.Groups, mg)
	}
	response.OK(c, resp)
}

// CreateAnnouncement 新建公告（管理员）
// POST /api/v1/announcements
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	var req dto.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err)
		return
	}

	a, err := h.annSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, toAnnouncementResponse(a))
}

// UpdateAnnouncement 更新公告（管理员）
// PUT /api/v1/announcements/:id
func (h *AnnouncementHandler) UpdateAnnouncement(c *gin.Context) {
	id, ok := parseAnnouncementID(c)
	if !ok {
		return
	}

	var req dto.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBinding(c, err)
		return
	}

	a, err := h.annSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, toAnnouncementResponse(a))
}

// DeleteAnnouncement 删除公告（管理员，幂等）
// DELETE /api/v1/announcements/:id
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	id, ok := parseAnnouncementID(c)
	if !ok {
		return
	}

	if err := h.annSvc.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, nil)
}

// OpenPDF 打开公告 PDF
// POST /api/v1/announcements/:id/pdf
//
// PDF 未上传时返回 200 与 uploaded=false，由前端提示。
func (h *AnnouncementHandler) OpenPDF(c *gin.Context) {
	session, ok := MustGetSession(c)
	if !ok {
		return
	}
	id, ok := parseAnnouncementID(c)
	if !ok {
		return
	}

	url, err := h.annSvc.OpenPDF(c.Request.Context(), session, id)
	if err != nil {
		if errors.Is(err, service.ErrPDFNotUploaded) {
			response.OK(c, dto.OpenPDFResponse{Uploaded: false, Message: "PDFはまだアップロードされていません"})
			return
		}
		handleServiceError(c, err)
		return
	}
	response.OK(c, dto.OpenPDFResponse{Uploaded: true, URL: url})
}

func parseAnnouncementID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, codeValidation, "无效的公告 ID")
		return 0, false
	}
	return id, true
}

func toAnnouncementResponse(a *model.Announcement) dto.AnnouncementResponse {
	schools := []string(a.Schools)
	if schools == nil {
		schools = []string{}
	}
	names := make([]string, 0, len(schools))
	colors := make([]string, 0, len(schools))
	for _, id := range schools {
		names = append(names, model.SchoolName(id))
		colors = append(colors, model.SchoolColor(id))
	}
	return dto.AnnouncementResponse{
		ID:           a.ID,
		Year:         a.Year,
		Month:        a.Month,
		Day:          a.Day,
		Title:        a.Title,
		PDFURL:       a.PDFURL,
		HasPDF:       a.HasPDF(),
		Schools:      schools,
		SchoolNames:  names,
		SchoolColors: colors,
	}
}
