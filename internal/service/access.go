package service

import (
	"time"

	"fxacademy/internal/model"
)

const day = 24 * time.Hour

// LessonState is a lesson's visibility for one user at one instant.
type LessonState struct {
	Unlocked bool       `json:"unlocked"`
	UnlockAt *time.Time `json:"unlock_at,omitempty"`
}

// LessonVisibility applies the release rule: admins see everything, an active ad-hoc grant opens
// the lesson, otherwise the user must be enrolled and drip_days must have elapsed since enrollment.
// UnlockAt is set only when the lesson is locked by drip alone.
func LessonVisibility(lesson *model.Lesson, admin bool, enrollment *model.Enrollment, granted bool, now time.Time) LessonState {
	if admin || granted {
		return LessonState{Unlocked: true}
	}
	if enrollment == nil {
		return LessonState{}
	}
	unlockAt := enrollment.EnrolledAt.Add(time.Duration(lesson.DripDays) * day)
	if !now.Before(unlockAt) {
		return LessonState{Unlocked: true}
	}
	return LessonState{UnlockAt: &unlockAt}
}

// grantedLessons indexes the lessons covered by grants active at now.
func grantedLessons(grants []model.AdhocAccess, now time.Time) map[string]bool {
	out := make(map[string]bool, len(grants))
	for i := range grants {
		if grants[i].ActiveAt(now) {
			out[grants[i].LessonID] = true
		}
	}
	return out
}
