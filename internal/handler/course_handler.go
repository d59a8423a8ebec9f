package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/service"
	"github.com/noah-isme/campus-go-api/internal/utils"
)

// CourseHandler serves the course and subject catalog.
type CourseHandler struct {
	courses  service.CourseService
	subjects service.SubjectService
	logger   zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(courses service.CourseService, subjects service.SubjectService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courses:  courses,
		subjects: subjects,
		logger:   logger.With().Str("component", "course_handler").Logger(),
	}
}

// RegisterCourses attaches /courses. Reads are public so the admission form
// can list programmes; writes go through the admin guard.
func (h *CourseHandler) RegisterCourses(router fiber.Router, auth, admin fiber.Handler) {
	router.Get("", h.listCourses)
	router.Get("/:id", h.getCourse)
	router.Post("", auth, admin, h.createCourse)
	router.Put("/:id", auth, admin, h.updateCourse)
	router.Delete("/:id", auth, admin, h.deleteCourse)
}

// RegisterSubjects attaches /subjects behind an authenticated group.
func (h *CourseHandler) RegisterSubjects(router fiber.Router, admin fiber.Handler) {
	router.Get("", h.listSubjects)
	router.Get("/:id", h.getSubject)
	router.Post("", admin, h.createSubject)
	router.Put("/:id", admin, h.updateSubject)
	router.Delete("/:id", admin, h.deleteSubject)
}

func (h *CourseHandler) listCourses(c *fiber.Ctx) error {
	courses, err := h.courses.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) getCourse(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	course, err := h.courses.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) createCourse(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	course, err := h.courses.Create(c.UserContext(), payload, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) updateCourse(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	course, err := h.courses.Update(c.UserContext(), id, payload, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) deleteCourse(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.courses.Delete(c.UserContext(), id, sessionFromContext(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "course deleted", fiber.Map{"id": id})
}

func (h *CourseHandler) listSubjects(c *fiber.Ctx) error {
	filter := dto.SubjectFilter{Status: c.Query("status")}
	var err error
	if filter.CourseID, err = parseQueryUint(c, "course_id"); err != nil {
		return badRequest(c, err.Error())
	}
	if filter.LecturerID, err = parseQueryUint(c, "lecturer_id"); err != nil {
		return badRequest(c, err.Error())
	}

	subjects, err := h.subjects.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "subjects retrieved", subjects)
}

func (h *CourseHandler) getSubject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	subject, err := h.subjects.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "subject retrieved", subject)
}

func (h *CourseHandler) createSubject(c *fiber.Ctx) error {
	var payload dto.SubjectCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	subject, err := h.subjects.Create(c.UserContext(), payload, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subject created", subject)
}

func (h *CourseHandler) updateSubject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var payload dto.SubjectUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "invalid request body")
	}
	subject, err := h.subjects.Update(c.UserContext(), id, payload, sessionFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "subject updated", subject)
}

func (h *CourseHandler) deleteSubject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.subjects.Delete(c.UserContext(), id, sessionFromContext(c)); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "subject deleted", fiber.Map{"id": id})
}
