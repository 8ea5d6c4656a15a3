package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"fxacademy/internal/model"
	"fxacademy/internal/service"
)

type inviteRequest struct {
	Code      string     `json:"code" validate:"omitempty,min=6,max=64"`
	Email     string     `json:"email" validate:"omitempty,email"`
	MaxUses   int        `json:"max_uses" validate:"gte=0,lte=10000"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type courseRequest struct {
	Slug        string `json:"slug" validate:"omitempty,max=100"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Published   bool   `json:"published"`
	Position    int    `json:"position" validate:"gte=0"`
}

func (r courseRequest) input() service.CourseInput {
	return service.CourseInput{
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Published:   r.Published,
		Position:    r.Position,
	}
}

type lessonRequest struct {
	CourseID    string `json:"course_id" validate:"required,uuid"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	VideoURL    string `json:"video_url" validate:"omitempty,url"`
	Position    int    `json:"position" validate:"gte=0"`
	DripDays    int    `json:"drip_days" validate:"gte=0,lte=3650"`
}

func (r lessonRequest) input() service.LessonInput {
	return service.LessonInput{
		CourseID:    r.CourseID,
		Title:       r.Title,
		Description: r.Description,
		VideoURL:    r.VideoURL,
		Position:    r.Position,
		DripDays:    r.DripDays,
	}
}

type enrollRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	CourseID string `json:"course_id" validate:"required,uuid"`
}

type grantRequest struct {
	UserID    string     `json:"user_id" validate:"required,uuid"`
	LessonID  string     `json:"lesson_id" validate:"required,uuid"`
	StartsAt  *time.Time `json:"starts_at"`
	ExpiresAt time.Time  `json:"expires_at" validate:"required"`
	Note      string     `json:"note" validate:"max=500"`
}

type subscriptionRequest struct {
	PlanID    *string    `json:"plan_id" validate:"omitempty,uuid"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// AdminListUsers lists accounts, optionally filtered by status.
//
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} service.UserListResult
// @Router /api/admin/users [get]
func AdminListUsers(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := model.UserStatus(c.Query("status"))
		switch status {
		case "", model.UserPending, model.UserApproved, model.UserRejected:
		default:
			return writeError(c, fiber.StatusBadRequest, "INVALID_STATUS", "invalid status filter")
		}
		limit, offset, ok := pagination(c, 20)
		if !ok {
			return nil
		}
		res, err := svc.ListUsers(c.UserContext(), status, limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// AdminApproveUser approves a pending account and emails the user.
//
// @Summary Approve user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Router /api/admin/users/{id}/approve [post]
func AdminApproveUser(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		u, err := svc.ApproveUser(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(u)
	}
}

// AdminRejectUser rejects an account.
//
// @Summary Reject user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Router /api/admin/users/{id}/reject [post]
func AdminRejectUser(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		u, err := svc.RejectUser(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(u)
	}
}

// AdminSetSubscription overrides a user's subscription. A missing expires_at ends it.
//
// @Summary Set subscription
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body subscriptionRequest true "Subscription"
// @Success 200 {object} model.User
// @Router /api/admin/users/{id}/subscription [put]
func AdminSetSubscription(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req subscriptionRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		u, err := svc.SetSubscription(c.UserContext(), id, req.PlanID, req.ExpiresAt)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(u)
	}
}

// AdminCreateInvite issues an invite code.
//
// @Summary Create invite
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body inviteRequest true "Invite"
// @Success 201 {object} model.Invite
// @Failure 409 {object} errorPayload
// @Router /api/admin/invites [post]
func AdminCreateInvite(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req inviteRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		inv, err := svc.CreateInvite(c.UserContext(), identity(c).UserID, service.InviteInput{
			Code:      req.Code,
			Email:     req.Email,
			MaxUses:   req.MaxUses,
			ExpiresAt: req.ExpiresAt,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(inv)
	}
}

// AdminListInvites pages through invites, newest first.
//
// @Summary List invites
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.InviteListResult
// @Router /api/admin/invites [get]
func AdminListInvites(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := pagination(c, 20)
		if !ok {
			return nil
		}
		res, err := svc.ListInvites(c.UserContext(), limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// AdminRevokeInvite stops an invite from being redeemed.
//
// @Summary Revoke invite
// @Tags admin
// @Security BearerAuth
// @Param code path string true "Invite code"
// @Success 204
// @Router /api/admin/invites/{code} [delete]
func AdminRevokeInvite(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.RevokeInvite(c.UserContext(), c.Params("code")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AdminListCourses lists every course, unpublished ones included.
//
// @Summary List all courses
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} listResponse[service.AdminCourse]
// @Router /api/admin/courses [get]
func AdminListCourses(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListCourses(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list(items))
	}
}

// AdminCreateCourse creates a course. The slug defaults to the slugified title.
//
// @Summary Create course
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body courseRequest true "Course"
// @Success 201 {object} service.AdminCourse
// @Router /api/admin/courses [post]
func AdminCreateCourse(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req courseRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		course, err := svc.CreateCourse(c.UserContext(), req.input())
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(course)
	}
}

// AdminUpdateCourse replaces a course's editable fields.
//
// @Summary Update course
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param body body courseRequest true "Course"
// @Success 200 {object} service.AdminCourse
// @Router /api/admin/courses/{id} [put]
func AdminUpdateCourse(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req courseRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		course, err := svc.UpdateCourse(c.UserContext(), id, req.input())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(course)
	}
}

// AdminDeleteCourse deletes a course with its lessons and cover.
//
// @Summary Delete course
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 204
// @Router /api/admin/courses/{id} [delete]
func AdminDeleteCourse(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		if err := svc.DeleteCourse(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AdminUploadCover replaces a course cover (multipart/form-data, field name: file).
//
// @Summary Upload course cover
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param file formData file true "Cover image"
// @Success 200 {object} service.AdminCourse
// @Failure 400 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Router /api/admin/courses/{id}/cover [post]
func AdminUploadCover(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		course, err := svc.UploadCover(c.UserContext(), id, f, fh.Filename, ct, fh.Size)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(course)
	}
}

// AdminListLessons lists a course's lessons in order.
//
// @Summary List lessons of a course
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} listResponse[model.Lesson]
// @Router /api/admin/courses/{id}/lessons [get]
func AdminListLessons(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		items, err := svc.ListLessons(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list(items))
	}
}

// AdminCreateLesson adds a lesson to a course.
//
// @Summary Create lesson
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body lessonRequest true "Lesson"
// @Success 201 {object} model.Lesson
// @Router /api/admin/lessons [post]
func AdminCreateLesson(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req lessonRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		l, err := svc.CreateLesson(c.UserContext(), req.input())
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(l)
	}
}

// AdminUpdateLesson replaces a lesson's editable fields.
//
// @Summary Update lesson
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Param body body lessonRequest true "Lesson"
// @Success 200 {object} model.Lesson
// @Router /api/admin/lessons/{id} [put]
func AdminUpdateLesson(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		var req lessonRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		l, err := svc.UpdateLesson(c.UserContext(), id, req.input())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(l)
	}
}

// AdminDeleteLesson deletes a lesson.
//
// @Summary Delete lesson
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Success 204
// @Router /api/admin/lessons/{id} [delete]
func AdminDeleteLesson(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		if err := svc.DeleteLesson(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AdminEnrollUser enrolls a user on their behalf, bypassing the subscription check.
//
// @Summary Enroll user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body enrollRequest true "Enrollment"
// @Success 201 {object} model.Enrollment
// @Router /api/admin/enrollments [post]
func AdminEnrollUser(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req enrollRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		e, err := svc.EnrollUser(c.UserContext(), req.UserID, req.CourseID)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

// AdminGrantAccess opens a lesson to a user for a time window.
//
// @Summary Grant lesson access
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body grantRequest true "Grant"
// @Success 201 {object} model.AdhocAccess
// @Router /api/admin/grants [post]
func AdminGrantAccess(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req grantRequest
		if err := bindJSON(c, &req); err != nil {
			return respondError(c, err)
		}
		g, err := svc.GrantAccess(c.UserContext(), identity(c).UserID, service.GrantInput{
			UserID:    req.UserID,
			LessonID:  req.LessonID,
			StartsAt:  req.StartsAt,
			ExpiresAt: req.ExpiresAt,
			Note:      req.Note,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(g)
	}
}

// AdminListGrants lists a user's grants.
//
// @Summary List grants of a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} listResponse[model.AdhocAccess]
// @Router /api/admin/users/{id}/grants [get]
func AdminListGrants(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		items, err := svc.ListGrants(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list(items))
	}
}

// AdminRevokeGrant deletes a grant.
//
// @Summary Revoke grant
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Grant ID"
// @Success 204
// @Router /api/admin/grants/{id} [delete]
func AdminRevokeGrant(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		if err := svc.RevokeGrant(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
