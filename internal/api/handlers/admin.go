package handlers

import (
	"errors"
	"net/http"

	"github.com/aloysiustan/teachrate-backend/internal/models"
	"github.com/aloysiustan/teachrate-backend/internal/services"
	"github.com/aloysiustan/teachrate-backend/internal/utils"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) GetDashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch dashboard stats", err)
		return
	}

	utils.SendSuccess(c, "Dashboard stats retrieved successfully", stats)
}

func (h *AdminHandler) CreateSchool(c *gin.Context) {
	var req models.CreateSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	school, err := h.adminService.CreateSchool(&req)
	if err != nil {
		utils.SendError(c, http.StatusBadRequest, "Failed to create school", err)
		return
	}

	utils.SendSuccess(c, "School created successfully", school)
}

func (h *AdminHandler) CreateTeacher(c *gin.Context) {
	var req models.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	teacher, err := h.adminService.CreateTeacher(&req)
	if err != nil {
		if errors.Is(err, services.ErrSchoolNotFound) {
			utils.SendNotFound(c, "School not found")
			return
		}
		utils.SendError(c, http.StatusBadRequest, "Failed to create teacher", err)
		return
	}

	utils.SendSuccess(c, "Teacher created successfully", teacher)
}

func (h *AdminHandler) UpdateTeacher(c *gin.Context) {
	teacherID, err := parseIDParam(c, "teacher_id")
	if err != nil {
		utils.SendValidationError(c, "Invalid teacher ID")
		return
	}

	var req models.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	teacher, err := h.adminService.UpdateTeacher(teacherID, &req)
	if err != nil {
		if errors.Is(err, services.ErrTeacherNotFound) {
			utils.SendNotFound(c, "Teacher not found")
			return
		}
		utils.SendError(c, http.StatusBadRequest, "Failed to update teacher", err)
		return
	}

	utils.SendSuccess(c, "Teacher updated successfully", teacher)
}

func (h *AdminHandler) DeleteTeacher(c *gin.Context) {
	teacherID, err := parseIDParam(c, "teacher_id")
	if err != nil {
		utils.SendValidationError(c, "Invalid teacher ID")
		return
	}

	if err := h.adminService.DeleteTeacher(teacherID); err != nil {
		if errors.Is(err, services.ErrTeacherNotFound) {
			utils.SendNotFound(c, "Teacher not found")
			return
		}
		utils.SendInternalError(c, "Failed to delete teacher", err)
		return
	}

	utils.SendSuccess(c, "Teacher deleted successfully", nil)
}

func (h *AdminHandler) UploadTeacherPhoto(c *gin.Context) {
	teacherID, err := parseIDParam(c, "teacher_id")
	if err != nil {
		utils.SendValidationError(c, "Invalid teacher ID")
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		utils.SendValidationError(c, "Photo file is required")
		return
	}
	defer file.Close()

	teacher, err := h.adminService.UploadTeacherPhoto(teacherID, file, header)
	if err != nil {
		if errors.Is(err, services.ErrTeacherNotFound) {
			utils.SendNotFound(c, "Teacher not found")
			return
		}
		utils.SendError(c, http.StatusBadRequest, "Failed to upload photo", err)
		return
	}

	utils.SendSuccess(c, "Photo uploaded successfully", teacher)
}

func (h *AdminHandler) GetUnreliableReviews(c *gin.Context) {
	reviews, err := h.adminService.GetUnreliableReviews()
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch unreliable reviews", err)
		return
	}

	utils.SendSuccess(c, "Unreliable reviews retrieved successfully", reviews)
}

func (h *AdminHandler) GetAIReviews(c *gin.Context) {
	reviews, err := h.adminService.GetAIReviews()
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch AI reviews", err)
		return
	}

	utils.SendSuccess(c, "AI reviews retrieved successfully", reviews)
}
