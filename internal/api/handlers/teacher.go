package handlers

import (
	"errors"
	"strconv"

	"github.com/aloysiustan/teachrate-backend/internal/services"
	"github.com/aloysiustan/teachrate-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type TeacherHandler struct {
	teacherService *services.TeacherService
}

func NewTeacherHandler(teacherService *services.TeacherService) *TeacherHandler {
	return &TeacherHandler{teacherService: teacherService}
}

func (h *TeacherHandler) SearchTeachers(c *gin.Context) {
	var filter services.TeacherFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendValidationError(c, "Invalid filter parameters")
		return
	}

	response, err := h.teacherService.SearchTeachers(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, services.ErrInvalidFilter) {
			utils.SendValidationError(c, err.Error())
			return
		}
		utils.SendInternalError(c, "Failed to search teachers", err)
		return
	}

	utils.SendSuccess(c, "Teachers retrieved successfully", response)
}

func (h *TeacherHandler) GetTeacherProfile(c *gin.Context) {
	teacherID, err := parseIDParam(c, "teacher_id")
	if err != nil {
		utils.SendValidationError(c, "Invalid teacher ID")
		return
	}

	profile, err := h.teacherService.GetTeacherProfile(c.Request.Context(), teacherID)
	if err != nil {
		if errors.Is(err, services.ErrTeacherNotFound) {
			utils.SendNotFound(c, "Teacher not found")
			return
		}
		utils.SendInternalError(c, "Failed to fetch teacher", err)
		return
	}

	utils.SendSuccess(c, "Teacher retrieved successfully", profile)
}

func (h *TeacherHandler) GetTeacherReviews(c *gin.Context) {
	teacherID, err := parseIDParam(c, "teacher_id")
	if err != nil {
		utils.SendValidationError(c, "Invalid teacher ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	reviews, err := h.teacherService.GetTeacherReviews(c.Request.Context(), teacherID, page, limit)
	if err != nil {
		if errors.Is(err, services.ErrTeacherNotFound) {
			utils.SendNotFound(c, "Teacher not found")
			return
		}
		utils.SendInternalError(c, "Failed to fetch reviews", err)
		return
	}

	utils.SendSuccess(c, "Reviews retrieved successfully", reviews)
}

func (h *TeacherHandler) GetSchools(c *gin.Context) {
	schools, err := h.teacherService.GetSchools(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch schools", err)
		return
	}

	utils.SendSuccess(c, "Schools retrieved successfully", schools)
}
