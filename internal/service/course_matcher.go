package service

import (
	"strings"

	"github.com/noah-isme/academy-recon-api/internal/models"
)

// matchCourse resolves an enrollment's claimed course reference to an
// authoritative pricing record. Rules run strict to loose and the first
// success wins; there is no scoring beyond order:
//
//  1. exact id match
//  2. id + name + level (case-sensitive, as stored)
//  3. id + name (level is the least reliable key, so it is relaxed first)
//
// Rule 1 is only taken when the id is unambiguous: duplicate ids across eras
// of data fall through to the name-qualified rules.
func matchCourse(enrollment models.StudentEnrollment, courses []models.CoursePricing) *models.CoursePricing {
	courseRef := models.StrField(enrollment.CourseRef)
	courseName := models.StrField(enrollment.CourseName)
	level := models.StrField(enrollment.Level)

	if courseRef != "" {
		if c := matchUniqueID(courseRef, courses); c != nil {
			return c
		}
		for i := range courses {
			if courses[i].ID == courseRef && courses[i].Name == courseName && courses[i].Level == level {
				return &courses[i]
			}
		}
		for i := range courses {
			if courses[i].ID == courseRef && courses[i].Name == courseName {
				return &courses[i]
			}
		}
	}
	return nil
}

func matchUniqueID(courseRef string, courses []models.CoursePricing) *models.CoursePricing {
	var found *models.CoursePricing
	for i := range courses {
		if courses[i].ID != courseRef {
			continue
		}
		if found != nil {
			return nil
		}
		found = &courses[i]
	}
	return found
}

// resolveCourseKey derives the stable half of the record identity. A match
// contributes its id; otherwise the raw reference, then the trimmed name,
// keeps the key deterministic so cross-batch pairing still works.
func resolveCourseKey(enrollment models.StudentEnrollment, matched *models.CoursePricing) string {
	if matched != nil {
		return matched.ID
	}
	if ref := models.StrField(enrollment.CourseRef); ref != "" {
		return ref
	}
	if name := strings.TrimSpace(models.StrField(enrollment.CourseName)); name != "" {
		return name
	}
	return models.PlaceholderValue
}
