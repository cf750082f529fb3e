package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/dto"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/pkg/response"
)

// SchoolHandler 教室目录（静态数据）
type SchoolHandler struct{}

// NewSchoolHandler 创建 SchoolHandler
func NewSchoolHandler() *SchoolHandler {
	return &SchoolHandler{}
}

// ListSchools 教室与所在地分组
// GET /api/v1/schools
func (h *SchoolHandler) ListSchools(c *gin.Context) {
	resp := dto.SchoolCatalogResponse{}
	for _, s := range model.Schools() {
		resp.Schools = append(resp.Schools, dto.SchoolResponse{
			ID:       s.ID,
			Name:     s.Name,
			Location: s.Location,
			Type:     s.Type,
			Color:    s.Color,
		})
	}
	for _, l := range model.Locations() {
		resp.Locations = append(resp.Locations, dto.LocationResponse{
			ID:      l.ID,
			Name:    l.Name,
			Schools: l.Schools,
		})
	}
	response.OK(c, resp)
}
