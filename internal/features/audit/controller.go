package audit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListLogs godoc
// @Summary      List audit logs
// @Description  Newest first. Filter by entity, record_id or actor_id.
// @Tags         audit
// @Produce      json
// @Param        entity     query string false "Entity name (module, section, access_rule, ...)"
// @Param        record_id  query string false "Record ID"
// @Param        actor_id   query string false "Actor user ID"
// @Param        page       query int    false "Page"
// @Param        limit      query int    false "Page size"
// @Success      200  {array} models.AuditLog
// @Failure      403  {object} map[string]string
// @Security     BearerAuth
// @Router       /api/audit-logs [get]
func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filters := make(map[string]interface{})
	for _, key := range []string{"entity", "record_id", "actor_id"} {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}

	logs, err := ctrl.Service.ListLogs(c.UserContext(), filters, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(logs)
}
