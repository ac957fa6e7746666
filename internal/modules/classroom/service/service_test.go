package classroom

import (
	"context"
	"testing"
	"time"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	"github.com/DukeZhu95/classroom-backend/internal/modules/classroom/dto"
	"github.com/DukeZhu95/classroom-backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeClassroomRepo is an in-memory ClassroomRepository that mimics the
// database's unique constraints on code and (classroom_id, student_id).
type fakeClassroomRepo struct {
	classrooms map[uuid.UUID]*entity.Classroom
	members    []entity.ClassroomMember
}

func newFakeClassroomRepo() *fakeClassroomRepo {
	return &fakeClassroomRepo{classrooms: make(map[uuid.UUID]*entity.Classroom)}
}

func (f *fakeClassroomRepo) Create(_ context.Context, classroom *entity.Classroom) error {
	for _, c := range f.classrooms {
		if c.Code == classroom.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	if classroom.ID == uuid.Nil {
		classroom.ID = uuid.New()
	}
	if classroom.CreatedAt.IsZero() {
		classroom.CreatedAt = time.Now()
	}
	f.classrooms[classroom.ID] = classroom
	return nil
}

func (f *fakeClassroomRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Classroom, error) {
	c, ok := f.classrooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeClassroomRepo) FindByCode(_ context.Context, code string) (*entity.Classroom, error) {
	for _, c := range f.classrooms {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeClassroomRepo) ListByTeacher(_ context.Context, teacherID uuid.UUID) ([]*entity.Classroom, error) {
	var out []*entity.Classroom
	for _, c := range f.classrooms {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClassroomRepo) ListByStudent(_ context.Context, studentID uuid.UUID) ([]*entity.Classroom, error) {
	var out []*entity.Classroom
	for _, m := range f.members {
		if m.StudentID == studentID && m.Status == entity.MemberStatusActive {
			if c, ok := f.classrooms[m.ClassroomID]; ok {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeClassroomRepo) AddMember(_ context.Context, member *entity.ClassroomMember) error {
	for _, m := range f.members {
		if m.ClassroomID == member.ClassroomID && m.StudentID == member.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	f.members = append(f.members, *member)
	return nil
}

func (f *fakeClassroomRepo) ListMembers(_ context.Context, classroomID uuid.UUID) ([]entity.ClassroomMember, error) {
	var out []entity.ClassroomMember
	for _, m := range f.members {
		if m.ClassroomID == classroomID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeClassroomRepo) IsMember(_ context.Context, classroomID, studentID uuid.UUID) (bool, error) {
	for _, m := range f.members {
		if m.ClassroomID == classroomID && m.StudentID == studentID && m.Status == entity.MemberStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeClassroomRepo) CountMembers(_ context.Context, classroomID uuid.UUID) (int64, error) {
	var count int64
	for _, m := range f.members {
		if m.ClassroomID == classroomID {
			count++
		}
	}
	return count, nil
}

func newTestService(repo *fakeClassroomRepo) ClassroomService {
	// nil redis client disables rate limiting
	return NewClassroomService(repo, nil, time.Second)
}

func TestCreateClass(t *testing.T) {
	ctx := context.Background()
	teacherID := uuid.New()

	t.Run("with explicit code", func(t *testing.T) {
		svc := newTestService(newFakeClassroomRepo())

		resp, err := svc.CreateClass(ctx, teacherID, dto.CreateClassRequest{Code: "MATH01"})
		require.NoError(t, err)
		assert.Equal(t, "MATH01", resp.Code)
		assert.Equal(t, teacherID, resp.TeacherID)
		assert.Equal(t, 0, resp.StudentCount)
	})

	t.Run("invalid code format", func(t *testing.T) {
		svc := newTestService(newFakeClassroomRepo())

		for _, code := range []string{"ABCDEF", "123456", "abc123", "AB12"} {
			_, err := svc.CreateClass(ctx, teacherID, dto.CreateClassRequest{Code: code})
			assert.ErrorIs(t, err, apperror.ErrInvalidInput, "code %q must be rejected", code)
		}
	})

	t.Run("duplicate code", func(t *testing.T) {
		svc := newTestService(newFakeClassroomRepo())

		_, err := svc.CreateClass(ctx, teacherID, dto.CreateClassRequest{Code: "MATH01"})
		require.NoError(t, err)

		_, err = svc.CreateClass(ctx, uuid.New(), dto.CreateClassRequest{Code: "MATH01"})
		assert.ErrorIs(t, err, apperror.ErrDuplicateCode)
	})

	t.Run("generated code", func(t *testing.T) {
		svc := newTestService(newFakeClassroomRepo())

		resp, err := svc.CreateClass(ctx, teacherID, dto.CreateClassRequest{})
		require.NoError(t, err)
		assert.NoError(t, ValidateCode(resp.Code))
	})
}

func TestJoinClass(t *testing.T) {
	ctx := context.Background()
	teacherID := uuid.New()
	studentID := uuid.New()

	setup := func(t *testing.T) (ClassroomService, *fakeClassroomRepo) {
		repo := newFakeClassroomRepo()
		svc := newTestService(repo)
		_, err := svc.CreateClass(ctx, teacherID, dto.CreateClassRequest{Code: "MATH01"})
		require.NoError(t, err)
		return svc, repo
	}

	t.Run("join by code", func(t *testing.T) {
		svc, repo := setup(t)

		resp, err := svc.JoinClass(ctx, studentID, dto.JoinClassRequest{Code: "MATH01"})
		require.NoError(t, err)
		assert.Equal(t, "MATH01", resp.Code)
		assert.Equal(t, 1, resp.StudentCount)

		member, err := repo.IsMember(ctx, resp.ID, studentID)
		require.NoError(t, err)
		assert.True(t, member)
	})

	t.Run("unknown code", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.JoinClass(ctx, studentID, dto.JoinClassRequest{Code: "ZZZZ99"})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("already a member", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.JoinClass(ctx, studentID, dto.JoinClassRequest{Code: "MATH01"})
		require.NoError(t, err)

		_, err = svc.JoinClass(ctx, studentID, dto.JoinClassRequest{Code: "MATH01"})
		assert.ErrorIs(t, err, apperror.ErrAlreadyMember)
	})

	t.Run("two students share a class", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.JoinClass(ctx, studentID, dto.JoinClassRequest{Code: "MATH01"})
		require.NoError(t, err)

		resp, err := svc.JoinClass(ctx, uuid.New(), dto.JoinClassRequest{Code: "MATH01"})
		require.NoError(t, err)
		assert.Equal(t, 2, resp.StudentCount)
	})
}

func TestRoster(t *testing.T) {
	ctx := context.Background()
	teacherID := uuid.New()
	studentID := uuid.New()

	repo := newFakeClassroomRepo()
	svc := newTestService(repo)

	created, err := svc.CreateClass(ctx, teacherID, dto.CreateClassRequest{Code: "MATH01"})
	require.NoError(t, err)
	_, err = svc.JoinClass(ctx, studentID, dto.JoinClassRequest{Code: "MATH01"})
	require.NoError(t, err)

	t.Run("owner sees the roster", func(t *testing.T) {
		roster, err := svc.Roster(ctx, created.ID, teacherID)
		require.NoError(t, err)
		require.Len(t, roster, 1)
		assert.Equal(t, studentID, roster[0].StudentID)
		assert.Equal(t, entity.MemberStatusActive, roster[0].Status)
	})

	t.Run("other teacher is rejected", func(t *testing.T) {
		_, err := svc.Roster(ctx, created.ID, uuid.New())
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("unknown classroom", func(t *testing.T) {
		_, err := svc.Roster(ctx, uuid.New(), teacherID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestListStudentClasses(t *testing.T) {
	ctx := context.Background()
	studentID := uuid.New()

	repo := newFakeClassroomRepo()
	svc := newTestService(repo)

	_, err := svc.CreateClass(ctx, uuid.New(), dto.CreateClassRequest{Code: "MATH01"})
	require.NoError(t, err)
	_, err = svc.CreateClass(ctx, uuid.New(), dto.CreateClassRequest{Code: "BIO202"})
	require.NoError(t, err)

	_, err = svc.JoinClass(ctx, studentID, dto.JoinClassRequest{Code: "MATH01"})
	require.NoError(t, err)

	classes, err := svc.ListStudentClasses(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "MATH01", classes[0].Code)

	empty, err := svc.ListStudentClasses(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}
