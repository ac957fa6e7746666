package task

import (
	"log"
	"sort"
	"time"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	submissionDto "github.com/DukeZhu95/classroom-backend/internal/modules/submission/dto"
	taskDto "github.com/DukeZhu95/classroom-backend/internal/modules/task/dto"
)

func buildTaskResponse(task *entity.Task) taskDto.TaskResponse {
	return taskDto.TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		ClassroomID: task.ClassroomID,
		TeacherID:   task.TeacherID,
		DueDate:     task.DueDate,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func (s *taskService) buildSubmissionResponses(subs []*entity.Submission) []submissionDto.SubmissionResponse {
	responses := make([]submissionDto.SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		var url *string
		if sub.StorageID != nil && s.fileStorage != nil {
			resolved, err := s.fileStorage.ResolveURL(*sub.StorageID)
			if err != nil {
				log.Printf("failed to resolve attachment URL for submission %s: %v", sub.ID, err)
			} else {
				url = &resolved
			}
		}
		responses = append(responses, submissionDto.NewSubmissionResponse(sub, url))
	}
	return responses
}

// sortStudentTasks orders dated tasks by ascending due date, which puts the
// most-overdue task first and upcoming deadlines after; undated tasks go
// last, newest first.
func sortStudentTasks(tasks []taskDto.StudentTaskResponse) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return taskLess(tasks[i].DueDate, tasks[j].DueDate, tasks[i].CreatedAt, tasks[j].CreatedAt)
	})
}

func sortTeacherTasks(tasks []taskDto.TeacherTaskResponse) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return taskLess(tasks[i].DueDate, tasks[j].DueDate, tasks[i].CreatedAt, tasks[j].CreatedAt)
	})
}

func taskLess(dueI, dueJ *time.Time, createdI, createdJ time.Time) bool {
	switch {
	case dueI != nil && dueJ != nil:
		if dueI.Equal(*dueJ) {
			return createdI.After(createdJ)
		}
		return dueI.Before(*dueJ)
	case dueI != nil:
		return true
	case dueJ != nil:
		return false
	default:
		return createdI.After(createdJ)
	}
}
