package task

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/task-manager-api/model"
	"github.com/sahilchouksey/task-manager-api/services"
	"github.com/sahilchouksey/task-manager-api/utils/response"
	"github.com/sahilchouksey/task-manager-api/utils/validation"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService *services.TaskService
	validator   *validation.Validator
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validation.NewValidator(),
	}
}

// TaskPayload is the request body for creating or replacing a task.
// It is accepted as JSON or as form values.
type TaskPayload struct {
	Title       string  `json:"title" form:"title" validate:"required"`
	Description *string `json:"description" form:"description"`
	Priority    *string `json:"priority" form:"priority"`
	DueDate     *string `json:"due_date" form:"due_date"`
	Completed   *bool   `json:"completed" form:"completed"`
}

// toInput applies the payload defaults
func (p TaskPayload) toInput() services.TaskInput {
	input := services.TaskInput{
		Title:       p.Title,
		Description: p.Description,
		Priority:    model.DefaultPriority,
		DueDate:     p.DueDate,
	}
	if p.Priority != nil && *p.Priority != "" {
		input.Priority = *p.Priority
	}
	if p.Completed != nil {
		input.Completed = *p.Completed
	}
	return input
}

// parsePayload decodes and validates the request body. On failure the
// error response has already been written and ok is false.
func (h *TaskHandler) parsePayload(c *fiber.Ctx) (input services.TaskInput, ok bool, err error) {
	var payload TaskPayload
	if err := c.BodyParser(&payload); err != nil {
		return input, false, response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(payload); err != nil {
		return input, false, response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	return payload.toInput(), true, nil
}

// taskID reads the :id route param. Routes constrain it to an integer;
// non-positive ids cannot exist and are reported as not found.
func taskID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// ListTasks handles GET /api/tasks
func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	raw := c.Query("filter")
	filter, ok := services.ParseTaskFilter(raw)
	if !ok {
		log.Debugf("Unknown task filter %q, listing all tasks", raw)
	}

	tasks, err := h.taskService.ListTasks(c.UserContext(), filter)
	if err != nil {
		log.Errorf("Error listing tasks: %v", err)
		return response.InternalServerError(c, "Failed to fetch tasks")
	}

	return response.Success(c, tasks)
}

// CreateTask handles POST /api/tasks
func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	input, ok, err := h.parsePayload(c)
	if !ok {
		return err
	}

	task, err := h.taskService.CreateTask(c.UserContext(), input)
	if err != nil {
		log.Errorf("Error saving task to database: %v", err)
		return response.InternalServerError(c, "Failed to save task")
	}

	log.Infof("Task %d saved to database", task.ID)
	return response.Created(c, task)
}

// GetTask handles GET /api/tasks/:id
func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return response.NotFound(c, "Task not found")
	}

	task, err := h.taskService.GetTask(c.UserContext(), id)
	if err != nil {
		return h.handleServiceError(c, err, "Failed to fetch task")
	}

	return response.Success(c, task)
}

// ReplaceTask handles PUT /api/tasks/:id
// Every field is overwritten; omitted fields take their defaults.
func (h *TaskHandler) ReplaceTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return response.NotFound(c, "Task not found")
	}

	// Existence is checked before the body, so unknown ids are 404 even with a bad payload
	if _, err := h.taskService.GetTask(c.UserContext(), id); err != nil {
		return h.handleServiceError(c, err, "Failed to fetch task")
	}

	input, ok, err := h.parsePayload(c)
	if !ok {
		return err
	}

	task, err := h.taskService.ReplaceTask(c.UserContext(), id, input)
	if err != nil {
		return h.handleServiceError(c, err, "Failed to update task")
	}

	return response.Success(c, task)
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return response.NotFound(c, "Task not found")
	}

	if err := h.taskService.DeleteTask(c.UserContext(), id); err != nil {
		return h.handleServiceError(c, err, "Failed to delete task")
	}

	return response.Message(c, "Task deleted")
}

func (h *TaskHandler) handleServiceError(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, services.ErrTaskNotFound) {
		return response.NotFound(c, "Task not found")
	}

	log.Errorf("%s: %v", message, err)
	return response.InternalServerError(c, message)
}
