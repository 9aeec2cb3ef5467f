package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"todo_backend/internal/logging"
	"todo_backend/internal/model"
	"todo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the unscoped admin routes
type AdminHandler struct {
	service service.AdminService
	log     logging.Logger
}

func NewAdminHandler(s service.AdminService, log logging.Logger) *AdminHandler {
	return &AdminHandler{service: s, log: log}
}

// parseAdminFilters reads owner_id, complete and priority from the query string
func parseAdminFilters(c *gin.Context) (model.AdminTodoFilters, bool) {
	var filters model.AdminTodoFilters
	if ownerIDStr := c.Query("owner_id"); ownerIDStr != "" {
		ownerID, err := strconv.Atoi(ownerIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid owner_id format"})
			return filters, false
		}
		filters.OwnerID = &ownerID
	}
	if completeStr := c.Query("complete"); completeStr != "" {
		complete, err := strconv.ParseBool(completeStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid complete format"})
			return filters, false
		}
		filters.Complete = &complete
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		priority, err := strconv.Atoi(priorityStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid priority format"})
			return filters, false
		}
		filters.Priority = &priority
	}
	return filters, true
}

func (h *AdminHandler) ListAllTodos(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	filters, ok := parseAdminFilters(c)
	if !ok {
		return
	}

	todos, err := h.service.ListAll(c.Request.Context(), identity, filters)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *AdminHandler) DeleteTodo(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	todoID, ok := todoIDParam(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAny(c.Request.Context(), identity, todoID); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ExportTodosCSV(c *gin.Context) {
	identity, ok := identityOrAbort(c)
	if !ok {
		return
	}
	filters, ok := parseAdminFilters(c)
	if !ok {
		return
	}

	csvBuffer, err := h.service.ExportCSV(c.Request.Context(), identity, filters)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	fileName := fmt.Sprintf("todos_export_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv", csvBuffer.Bytes())
}

// RegisterAdminRoutes registers the /admin routes behind authMW and adminMW
func (h *AdminHandler) RegisterAdminRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	adminRoutes := rg.Group("/admin")
	adminRoutes.Use(authMW, adminMW)
	{
		adminRoutes.GET("/todo", h.ListAllTodos)
		adminRoutes.DELETE("/todo/:id", h.DeleteTodo)
		adminRoutes.GET("/todo/export/csv", h.ExportTodosCSV)
	}
}
