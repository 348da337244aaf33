package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/campusflow/sectioning/internal/app/models"
	"github.com/campusflow/sectioning/internal/app/repositories"
)

// catalogSnapshot adapts the catalog repository to the engine's read
// interface. Lookups are cached for the lifetime of one request cycle, so the
// engine sees a consistent view even when it asks for the same offering many
// times. A snapshot is bound to a single request and is not goroutine safe.
type catalogSnapshot struct {
	ctx    context.Context
	repo   *repositories.CatalogRepository
	logger zerolog.Logger

	courses     map[int64]*models.Course
	offerings   map[int64]*models.Offering
	enrollments map[int64]*models.OfferingEnrollments
}

func newCatalogSnapshot(ctx context.Context, repo *repositories.CatalogRepository, logger zerolog.Logger) *catalogSnapshot {
	return &catalogSnapshot{
		ctx:         ctx,
		repo:        repo,
		logger:      logger,
		courses:     make(map[int64]*models.Course),
		offerings:   make(map[int64]*models.Offering),
		enrollments: make(map[int64]*models.OfferingEnrollments),
	}
}

// Course implements sectioning.Catalog. A failed load is reported as an
// unknown course; the engine turns that into a broken-reference error.
func (s *catalogSnapshot) Course(courseID int64) *models.Course {
	if course, ok := s.courses[courseID]; ok {
		return course
	}
	course, err := s.repo.GetCourse(s.ctx, courseID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("courseId", courseID).Msg("Course lookup failed")
		course = nil
	}
	s.courses[courseID] = course
	return course
}

// Offering implements sectioning.Catalog.
func (s *catalogSnapshot) Offering(offeringID int64) *models.Offering {
	if offering, ok := s.offerings[offeringID]; ok {
		return offering
	}
	offering, err := s.repo.GetOffering(s.ctx, offeringID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("offeringId", offeringID).Msg("Offering lookup failed")
		offering = nil
	}
	s.offerings[offeringID] = offering
	return offering
}

// Enrollments implements sectioning.Catalog.
func (s *catalogSnapshot) Enrollments(offeringID int64) *models.OfferingEnrollments {
	if enrollments, ok := s.enrollments[offeringID]; ok {
		return enrollments
	}
	enrollments, err := s.repo.GetOfferingEnrollments(s.ctx, offeringID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("offeringId", offeringID).Msg("Enrollment lookup failed")
		enrollments = &models.OfferingEnrollments{OfferingID: offeringID}
	}
	s.enrollments[offeringID] = enrollments
	return enrollments
}
