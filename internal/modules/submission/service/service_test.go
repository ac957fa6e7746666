package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/DukeZhu95/classroom-backend/internal/modules/submission/dto"
	repo "github.com/DukeZhu95/classroom-backend/internal/modules/submission/repository"
	"github.com/DukeZhu95/classroom-backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSubmissionRepo struct {
	subs map[string]*entity.Submission
	// gradedGuard simulates a grade landing between the service's read and
	// its write: the next Upsert reports the guard refused the update.
	gradedGuard bool
}

func subKey(taskID, studentID uuid.UUID) string {
	return taskID.String() + "/" + studentID.String()
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{subs: make(map[string]*entity.Submission)}
}

func (f *fakeSubmissionRepo) Upsert(_ context.Context, sub *entity.Submission) (bool, error) {
	key := subKey(sub.TaskID, sub.StudentID)
	existing, ok := f.subs[key]
	if ok {
		if f.gradedGuard || existing.Status == entity.SubmissionStatusGraded {
			return false, nil
		}
		existing.Content = sub.Content
		existing.SubmittedAt = sub.SubmittedAt
		existing.Status = sub.Status
		existing.StorageID = sub.StorageID
		existing.AttachmentName = sub.AttachmentName
		return true, nil
	}
	cp := *sub
	cp.ID = uuid.New()
	f.subs[key] = &cp
	return true, nil
}

func (f *fakeSubmissionRepo) Save(_ context.Context, sub *entity.Submission) error {
	f.subs[subKey(sub.TaskID, sub.StudentID)] = sub
	return nil
}

func (f *fakeSubmissionRepo) FindByTaskAndStudent(_ context.Context, taskID, studentID uuid.UUID) (*entity.Submission, error) {
	sub, ok := f.subs[subKey(taskID, studentID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeSubmissionRepo) ListByTask(_ context.Context, taskID uuid.UUID) ([]*entity.Submission, error) {
	var out []*entity.Submission
	for _, s := range f.subs {
		if s.TaskID == taskID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListByStudent(_ context.Context, studentID uuid.UUID) ([]*entity.Submission, error) {
	var out []*entity.Submission
	for _, s := range f.subs {
		if s.StudentID == studentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) StatsByTaskIDs(_ context.Context, taskIDs []uuid.UUID) ([]repo.TaskStats, error) {
	byTask := make(map[uuid.UUID]*repo.TaskStats)
	for _, s := range f.subs {
		st, ok := byTask[s.TaskID]
		if !ok {
			st = &repo.TaskStats{TaskID: s.TaskID}
			byTask[s.TaskID] = st
		}
		st.Total++
		if s.Status == entity.SubmissionStatusGraded {
			st.Graded++
		}
	}
	var out []repo.TaskStats
	for _, id := range taskIDs {
		if st, ok := byTask[id]; ok {
			out = append(out, *st)
		}
	}
	return out, nil
}

type fakeTaskRepo struct {
	tasks map[uuid.UUID]*entity.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*entity.Task)}
}

func (f *fakeTaskRepo) Create(_ context.Context, task *entity.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (f *fakeTaskRepo) Save(_ context.Context, task *entity.Task) error {
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.tasks, id)
	return nil
}

func (f *fakeTaskRepo) ListByClassroom(_ context.Context, classroomID uuid.UUID) ([]*entity.Task, error) {
	var out []*entity.Task
	for _, t := range f.tasks {
		if t.ClassroomID == classroomID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) ListActiveByClassroomIDs(_ context.Context, classroomIDs []uuid.UUID) ([]*entity.Task, error) {
	var out []*entity.Task
	for _, t := range f.tasks {
		if t.Status != entity.TaskStatusActive {
			continue
		}
		for _, id := range classroomIDs {
			if t.ClassroomID == id {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) ListByTeacher(_ context.Context, teacherID uuid.UUID) ([]*entity.Task, error) {
	var out []*entity.Task
	for _, t := range f.tasks {
		if t.TeacherID == teacherID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeMemberRepo struct {
	classrooms map[uuid.UUID]*entity.Classroom
	members    map[string]bool
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{
		classrooms: make(map[uuid.UUID]*entity.Classroom),
		members:    make(map[string]bool),
	}
}

func (f *fakeMemberRepo) addMember(classroomID, studentID uuid.UUID) {
	f.members[subKey(classroomID, studentID)] = true
}

func (f *fakeMemberRepo) Create(_ context.Context, classroom *entity.Classroom) error {
	if classroom.ID == uuid.Nil {
		classroom.ID = uuid.New()
	}
	f.classrooms[classroom.ID] = classroom
	return nil
}

func (f *fakeMemberRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Classroom, error) {
	c, ok := f.classrooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeMemberRepo) FindByCode(_ context.Context, code string) (*entity.Classroom, error) {
	for _, c := range f.classrooms {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) ListByTeacher(_ context.Context, _ uuid.UUID) ([]*entity.Classroom, error) {
	return nil, nil
}

func (f *fakeMemberRepo) ListByStudent(_ context.Context, _ uuid.UUID) ([]*entity.Classroom, error) {
	return nil, nil
}

func (f *fakeMemberRepo) AddMember(_ context.Context, member *entity.ClassroomMember) error {
	f.addMember(member.ClassroomID, member.StudentID)
	return nil
}

func (f *fakeMemberRepo) ListMembers(_ context.Context, _ uuid.UUID) ([]entity.ClassroomMember, error) {
	return nil, nil
}

func (f *fakeMemberRepo) IsMember(_ context.Context, classroomID, studentID uuid.UUID) (bool, error) {
	return f.members[subKey(classroomID, studentID)], nil
}

func (f *fakeMemberRepo) CountMembers(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

// fakeStorage implements storage.FileStorage in memory, with switches for
// the failure-policy tests.
type fakeStorage struct {
	uploads    int
	blobs      map[string]bool
	deleted    []string
	failUpload bool
	failDelete bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: make(map[string]bool)}
}

func (f *fakeStorage) Upload(_ context.Context, _ io.Reader, folder, fileName string) (string, error) {
	if f.failUpload {
		return "", errors.New("storage unavailable")
	}
	f.uploads++
	id := fmt.Sprintf("%s/%d-%s", folder, f.uploads, fileName)
	f.blobs[id] = true
	return id, nil
}

func (f *fakeStorage) ResolveURL(publicID string) (string, error) {
	return "https://cdn.example.com/" + publicID, nil
}

func (f *fakeStorage) Delete(_ context.Context, publicID string) error {
	if f.failDelete {
		return errors.New("storage unavailable")
	}
	delete(f.blobs, publicID)
	f.deleted = append(f.deleted, publicID)
	return nil
}

type fixture struct {
	svc         SubmissionService
	subs        *fakeSubmissionRepo
	tasks       *fakeTaskRepo
	classrooms  *fakeMemberRepo
	storage     *fakeStorage
	teacherID   uuid.UUID
	studentID   uuid.UUID
	classroomID uuid.UUID
	taskID      uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		subs:       newFakeSubmissionRepo(),
		tasks:      newFakeTaskRepo(),
		classrooms: newFakeMemberRepo(),
		storage:    newFakeStorage(),
		teacherID:  uuid.New(),
		studentID:  uuid.New(),
	}

	classroom := &entity.Classroom{Code: "MATH01", TeacherID: f.teacherID}
	require.NoError(t, f.classrooms.Create(context.Background(), classroom))
	f.classroomID = classroom.ID
	f.classrooms.addMember(f.classroomID, f.studentID)

	task := &entity.Task{
		Title:       "Homework 1",
		ClassroomID: f.classroomID,
		TeacherID:   f.teacherID,
		Status:      entity.TaskStatusActive,
	}
	require.NoError(t, f.tasks.Create(context.Background(), task))
	f.taskID = task.ID

	// nil redis client disables rate limiting
	f.svc = NewSubmissionService(f.subs, f.tasks, f.classrooms, f.storage, nil, time.Second)
	return f
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("first submission", func(t *testing.T) {
		f := newFixture(t)

		resp, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "my answer"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "my answer", resp.Content)
		assert.Equal(t, entity.SubmissionStatusSubmitted, resp.Status)
		assert.Nil(t, resp.Grade)
	})

	t.Run("resubmission replaces in place", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "v1"}, nil)
		require.NoError(t, err)

		second, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "v2"}, nil)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID, "resubmission must reuse the row")
		assert.Equal(t, "v2", second.Content)
		assert.Len(t, f.subs.subs, 1)
	})

	t.Run("unknown task", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Submit(ctx, f.studentID, uuid.New(), dto.SubmitRequest{Content: "x"}, nil)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("non-member rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Submit(ctx, uuid.New(), f.taskID, dto.SubmitRequest{Content: "x"}, nil)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("graded submission is frozen", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "v1"}, nil)
		require.NoError(t, err)
		_, err = f.svc.Grade(ctx, f.teacherID, f.taskID, f.studentID, dto.GradeRequest{Grade: 90})
		require.NoError(t, err)

		_, err = f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "v2"}, nil)
		assert.ErrorIs(t, err, apperror.ErrCannotModifyGraded)

		stored, err := f.subs.FindByTaskAndStudent(ctx, f.taskID, f.studentID)
		require.NoError(t, err)
		assert.Equal(t, "v1", stored.Content, "graded content must survive the attempt")
	})

	t.Run("grade racing the write is caught by the guard", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "v1"}, nil)
		require.NoError(t, err)

		f.subs.gradedGuard = true
		_, err = f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "v2"}, nil)
		assert.ErrorIs(t, err, apperror.ErrCannotModifyGraded)
	})
}

func TestSubmitAttachments(t *testing.T) {
	ctx := context.Background()

	attach := func(name string) *AttachmentUpload {
		return &AttachmentUpload{Reader: strings.NewReader("file body"), FileName: name}
	}

	t.Run("attachment stored and URL resolved", func(t *testing.T) {
		f := newFixture(t)

		resp, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "x"}, attach("essay.pdf"))
		require.NoError(t, err)
		require.NotNil(t, resp.AttachmentName)
		assert.Equal(t, "essay.pdf", *resp.AttachmentName)
		require.NotNil(t, resp.AttachmentURL)
		assert.Contains(t, *resp.AttachmentURL, "https://cdn.example.com/")
	})

	t.Run("upload failure aborts the submission", func(t *testing.T) {
		f := newFixture(t)
		f.storage.failUpload = true

		_, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "x"}, attach("essay.pdf"))
		require.Error(t, err)
		assert.Empty(t, f.subs.subs, "no row may reference a blob that was not stored")
	})

	t.Run("replaced attachment blob is deleted after the write", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "v1"}, attach("v1.pdf"))
		require.NoError(t, err)

		_, err = f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "v2"}, attach("v2.pdf"))
		require.NoError(t, err)

		require.Len(t, f.storage.deleted, 1)
		assert.Contains(t, *first.AttachmentURL, f.storage.deleted[0])
	})

	t.Run("old blob delete failure does not fail the submission", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "v1"}, attach("v1.pdf"))
		require.NoError(t, err)

		f.storage.failDelete = true
		resp, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "v2"}, attach("v2.pdf"))
		require.NoError(t, err)
		assert.Equal(t, "v2", resp.Content)
	})

	t.Run("content-only resubmission keeps the attachment", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "v1"}, attach("essay.pdf"))
		require.NoError(t, err)

		resp, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "v2"}, nil)
		require.NoError(t, err)
		require.NotNil(t, resp.AttachmentName)
		assert.Equal(t, "essay.pdf", *resp.AttachmentName)
		assert.Empty(t, f.storage.deleted)
	})
}

func TestGrade(t *testing.T) {
	ctx := context.Background()

	t.Run("grade and feedback recorded", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "my essay"}, nil)
		require.NoError(t, err)

		feedback := "Good work"
		resp, err := f.svc.Grade(ctx, f.teacherID, f.taskID, f.studentID, dto.GradeRequest{Grade: 88, Feedback: &feedback})
		require.NoError(t, err)

		assert.Equal(t, entity.SubmissionStatusGraded, resp.Status)
		require.NotNil(t, resp.Grade)
		assert.Equal(t, 88, *resp.Grade)
		require.NotNil(t, resp.Feedback)
		assert.Equal(t, "Good work", *resp.Feedback)
		require.NotNil(t, resp.GradedBy)
		assert.Equal(t, f.teacherID, *resp.GradedBy)
		assert.NotNil(t, resp.GradedAt)
	})

	t.Run("regrade is allowed", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "x"}, nil)
		require.NoError(t, err)
		_, err = f.svc.Grade(ctx, f.teacherID, f.taskID, f.studentID, dto.GradeRequest{Grade: 70})
		require.NoError(t, err)

		resp, err := f.svc.Grade(ctx, f.teacherID, f.taskID, f.studentID, dto.GradeRequest{Grade: 75})
		require.NoError(t, err)
		assert.Equal(t, 75, *resp.Grade)
	})

	t.Run("grade out of range", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "x"}, nil)
		require.NoError(t, err)

		for _, grade := range []int{-1, 101, 150} {
			_, err := f.svc.Grade(ctx, f.teacherID, f.taskID, f.studentID, dto.GradeRequest{Grade: grade})
			assert.ErrorIs(t, err, apperror.ErrInvalidGrade, "grade %d must be rejected", grade)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		}
	})

	t.Run("boundary grades accepted", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "x"}, nil)
		require.NoError(t, err)

		for _, grade := range []int{0, 100} {
			_, err := f.svc.Grade(ctx, f.teacherID, f.taskID, f.studentID, dto.GradeRequest{Grade: grade})
			assert.NoError(t, err, "grade %d is within range", grade)
		}
	})

	t.Run("other teacher cannot grade", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "x"}, nil)
		require.NoError(t, err)

		_, err = f.svc.Grade(ctx, uuid.New(), f.taskID, f.studentID, dto.GradeRequest{Grade: 50})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("grading without a submission", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Grade(ctx, f.teacherID, f.taskID, f.studentID, dto.GradeRequest{Grade: 50})
		assert.ErrorIs(t, err, apperror.ErrSubmissionNotFound)
	})
}

func TestGetSubmission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.GetSubmission(ctx, f.taskID, f.studentID)
	assert.ErrorIs(t, err, apperror.ErrSubmissionNotFound)

	_, err = f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "x"}, nil)
	require.NoError(t, err)

	resp, err := f.svc.GetSubmission(ctx, f.taskID, f.studentID)
	require.NoError(t, err)
	assert.Equal(t, "x", resp.Content)
}

func TestListTaskSubmissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	other := uuid.New()
	f.classrooms.addMember(f.classroomID, other)

	_, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "a"}, nil)
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, other, f.taskID, dto.SubmitRequest{Content: "b"}, nil)
	require.NoError(t, err)

	subs, err := f.svc.ListTaskSubmissions(ctx, f.teacherID, f.taskID)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	_, err = f.svc.ListTaskSubmissions(ctx, uuid.New(), f.taskID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestClassSubmissionStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Second task without submissions must still appear, zero-filled.
	emptyTask := &entity.Task{
		Title:       "Homework 2",
		ClassroomID: f.classroomID,
		TeacherID:   f.teacherID,
		Status:      entity.TaskStatusActive,
	}
	require.NoError(t, f.tasks.Create(ctx, emptyTask))

	other := uuid.New()
	f.classrooms.addMember(f.classroomID, other)

	_, err := f.svc.Submit(ctx, f.studentID, f.taskID, dto.SubmitRequest{Content: "a"}, nil)
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, other, f.taskID, dto.SubmitRequest{Content: "b"}, nil)
	require.NoError(t, err)
	_, err = f.svc.Grade(ctx, f.teacherID, f.taskID, f.studentID, dto.GradeRequest{Grade: 95})
	require.NoError(t, err)

	stats, err := f.svc.ClassSubmissionStats(ctx, f.teacherID, f.classroomID)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byTask := make(map[uuid.UUID]dto.TaskStatsResponse)
	for _, st := range stats {
		byTask[st.TaskID] = st
	}
	assert.Equal(t, 2, byTask[f.taskID].TotalSubmissions)
	assert.Equal(t, 1, byTask[f.taskID].GradedSubmissions)
	assert.Equal(t, 0, byTask[emptyTask.ID].TotalSubmissions)
	assert.Equal(t, 0, byTask[emptyTask.ID].GradedSubmissions)

	_, err = f.svc.ClassSubmissionStats(ctx, uuid.New(), f.classroomID)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
