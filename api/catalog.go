package api

import (
	"context"
	"fmt"

	"course_miniapp/httpclient"
	"course_miniapp/models"
)

func (b *Backend) FetchMe(ctx context.Context) (models.User, error) {
	return withMock(b, b.mocks.Me, func() (models.User, error) {
		return decode[models.User](b.get(ctx, "/me"))
	})
}

func (b *Backend) FetchProjects(ctx context.Context) ([]models.Project, error) {
	return withMock(b, b.mocks.Projects, func() ([]models.Project, error) {
		return decode[[]models.Project](b.get(ctx, "/projects", httpclient.WithoutAuth()))
	})
}

func (b *Backend) FetchCourses(ctx context.Context) ([]models.Course, error) {
	return withMock(b,
		func() []models.Course { return b.mocks.CoursesByProject(0) },
		func() ([]models.Course, error) {
			return decode[[]models.Course](b.get(ctx, "/courses"))
		})
}

func (b *Backend) FetchProjectCourses(ctx context.Context, projectID int) ([]models.Course, error) {
	return withMock(b,
		func() []models.Course { return b.mocks.CoursesByProject(projectID) },
		func() ([]models.Course, error) {
			return decode[[]models.Course](b.get(ctx, fmt.Sprintf("/projects/%d/courses", projectID)))
		})
}

// FetchCourseByID returns course detail including lessons.
func (b *Backend) FetchCourseByID(ctx context.Context, projectID, courseID int) (models.Course, error) {
	return withMock(b,
		func() models.Course { return b.mocks.CourseByID(projectID, courseID) },
		func() (models.Course, error) {
			return decode[models.Course](b.get(ctx, fmt.Sprintf("/projects/%d/courses/%d", projectID, courseID)))
		})
}

func (b *Backend) FetchMyCourses(ctx context.Context) ([]models.Course, error) {
	return withMock(b, b.mocks.MyCourses, func() ([]models.Course, error) {
		return decode[[]models.Course](b.get(ctx, "/my/courses"))
	})
}

func (b *Backend) FetchLessonVideo(ctx context.Context, lessonID int) (models.LessonVideo, error) {
	return withMock(b, b.mocks.LessonVideo, func() (models.LessonVideo, error) {
		return decode[models.LessonVideo](b.get(ctx, fmt.Sprintf("/lessons/%d/video", lessonID)))
	})
}
