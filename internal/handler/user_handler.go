package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// UserHandler manages accounts and lecturer profiles for admins.
type UserHandler struct {
	users     service.UserService
	lecturers service.LecturerService
	logger    zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(users service.UserService, lecturers service.LecturerService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		lecturers: lecturers,
		logger:    logger.With().Str("component", "user_handler").Logger(),
	}
}

// RegisterUsers attaches /admin/users routes.
func (h *UserHandler) RegisterUsers(router fiber.Router) {
	router.Get("", h.listUsers)
	router.Post("", h.createUser)
	router.Get("/:id", h.getUser)
	router.Put("/:id", h.updateUser)
	router.Delete("/:id", h.deleteUser)
}

// RegisterLecturers attaches /admin/lecturers routes.
func (h *UserHandler) RegisterLecturers(router fiber.Router) {
	router.Get("", h.listLecturers)
	router.Post("", h.createLecturer)
	router.Put("/:id", h.updateLecturer)
	router.Delete("/:id", h.deleteLecturer)
}

func (h *UserHandler) listUsers(c *fiber.Ctx) error {
	req := dto.UserListRequest{Role: c.Query("role"), Search: c.Query("search")}
	users, err := h.users.List(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "users retrieved", users)
}

func (h *UserHandler) getUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *UserHandler) createUser(c *fiber.Ctx) error {
	var payload dto.UserCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := h.users.Create(c.UserContext(), payload, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user created", user)
}

func (h *UserHandler) updateUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var payload dto.UserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := h.users.Update(c.UserContext(), id, payload, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "user updated", user)
}

func (h *UserHandler) deleteUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.users.Delete(c.UserContext(), id, sessionFromContext(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "user deleted", fiber.Map{"id": id})
}

func (h *UserHandler) listLecturers(c *fiber.Ctx) error {
	lecturers, err := h.lecturers.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "lecturers retrieved", lecturers)
}

func (h *UserHandler) createLecturer(c *fiber.Ctx) error {
	var payload dto.LecturerCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	lecturer, err := h.lecturers.Create(c.UserContext(), payload, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "lecturer created", lecturer)
}

func (h *UserHandler) updateLecturer(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var payload dto.LecturerUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	lecturer, err := h.lecturers.Update(c.UserContext(), id, payload, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "lecturer updated", lecturer)
}

func (h *UserHandler) deleteLecturer(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.lecturers.Delete(c.UserContext(), id, sessionFromContext(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "lecturer deleted", fiber.Map{"id": id})
}
