package handler

import (
	"github.com/gofiber/fiber/v2"

	"fxacademy/internal/service"
)

// ListCourses returns the catalog annotated for the caller.
//
// @Summary List courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} listResponse[service.CourseSummary]
// @Router /api/courses [get]
func ListCourses(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListCourses(c.UserContext(), viewer(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list(items))
	}
}

// GetCourse returns a course with its lessons and their lock state.
//
// @Summary Course detail
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Success 200 {object} service.CourseDetail
// @Failure 404 {object} errorPayload
// @Router /api/courses/{slug} [get]
func GetCourse(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.GetCourse(c.UserContext(), viewer(c), c.Params("slug"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(d)
	}
}

// EnrollCourse enrolls the caller; it needs an active subscription.
//
// @Summary Enroll in a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Success 201 {object} model.Enrollment
// @Failure 403 {object} errorPayload
// @Router /api/courses/{slug}/enroll [post]
func EnrollCourse(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		e, err := svc.Enroll(c.UserContext(), viewer(c), c.Params("slug"))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

// CourseProgress returns completed and total lesson counts.
//
// @Summary Course progress
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Success 200 {object} service.Progress
// @Router /api/courses/{slug}/progress [get]
func CourseProgress(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.CourseProgress(c.UserContext(), viewer(c), c.Params("slug"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

// GetLesson returns a visible lesson with its video metadata.
//
// @Summary Lesson detail
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Success 200 {object} service.LessonDetail
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/lessons/{id} [get]
func GetLesson(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		d, err := svc.GetLesson(c.UserContext(), viewer(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(d)
	}
}

// CompleteLesson marks a visible lesson as completed.
//
// @Summary Complete a lesson
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Success 200 {object} model.Progress
// @Router /api/lessons/{id}/complete [post]
func CompleteLesson(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		p, err := svc.CompleteLesson(c.UserContext(), viewer(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

// CourseCover streams a course cover image through the API.
//
// @Summary Course cover image
// @Tags courses
// @Produce image/jpeg,image/png,image/webp
// @Param id path string true "Course ID"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Router /api/covers/{id} [get]
func CourseCover(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		rc, info, err := svc.OpenCover(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, info.ETag)
		}
		c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
		// The body stream is closed by fasthttp once written.
		return c.SendStream(rc, int(info.Size))
	}
}
