package search

import (
	"context"
	"fmt"
	"html"
	"log"
	"os"
	"strings"
	"time"

	"github.com/DukeZhu95/classroom-backend/internal/entity"
	classroomRepo "github.com/DukeZhu95/classroom-backend/internal/modules/classroom/repository"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

// TaskSearchService owns the Meilisearch "tasks" index. Searching itself is
// done by clients with a tenant token scoped to the classrooms the caller
// may see; the backend only indexes and issues tokens.
type TaskSearchService interface {
	IndexTask(task *entity.Task) error
	DeleteTask(id string) error
	GenerateSearchToken(ctx context.Context, userID uuid.UUID, role string) (string, error)
}

type taskSearchService struct {
	client        meilisearch.ServiceManager
	classrooms    classroomRepo.ClassroomRepository
	masterKey     string
	signingKeyUID string
	signingKey    string
	sanitizer     *bluemonday.Policy
}

func NewTaskSearchService(client meilisearch.ServiceManager, classrooms classroomRepo.ClassroomRepository) TaskSearchService {
	masterKey := os.Getenv("MEILI_MASTER_KEY")
	if masterKey == "" {
		log.Println("WARNING: MEILI_MASTER_KEY is not set.")
	}

	s := &taskSearchService{
		client:     client,
		classrooms: classrooms,
		masterKey:  masterKey,
		sanitizer:  bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	s.initSigningKey()
	return s
}

func (s *taskSearchService) initIndexes() {
	filterableAttrs := []string{"classroom_id", "teacher_id", "status"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index("tasks").UpdateFilterableAttributes(&filterableInterface); err != nil {
		log.Printf("Failed to update tasks filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at", "due_date"}
	if _, err := s.client.Index("tasks").UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.Printf("Failed to update tasks sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

func (s *taskSearchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{
		Limit: 20,
	})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == "TenantTokenSigner" {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			log.Println("Found existing Meilisearch signing key")
			return
		}
	}

	expiry := time.Now().AddDate(100, 0, 0)

	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign tenant tokens",
		Name:        "TenantTokenSigner",
		Actions:     []string{"search"},
		Indexes:     []string{"tasks"},
		ExpiresAt:   expiry,
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

type meiliTaskDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ClassroomID string `json:"classroom_id"`
	TeacherID   string `json:"teacher_id"`
	Status      string `json:"status"`
	DueDate     int64  `json:"due_date"`
	CreatedAt   int64  `json:"created_at"`
}

func (s *taskSearchService) cleanContentForIndex(content string) string {
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)

	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *taskSearchService) IndexTask(task *entity.Task) error {
	doc := meiliTaskDoc{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: s.cleanContentForIndex(task.Description),
		ClassroomID: task.ClassroomID.String(),
		TeacherID:   task.TeacherID.String(),
		Status:      task.Status,
		CreatedAt:   task.CreatedAt.Unix(),
	}
	if task.DueDate != nil {
		doc.DueDate = task.DueDate.Unix()
	}

	res, err := s.client.Index("tasks").AddDocuments([]meiliTaskDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed task %s, task id: %d", task.ID, res.TaskUID)
	return nil
}

func (s *taskSearchService) DeleteTask(id string) error {
	_, err := s.client.Index("tasks").DeleteDocument(id)
	return err
}

// GenerateSearchToken issues a tenant token restricted to the tasks the
// caller may see: teachers search their own tasks, students the active tasks
// of classrooms they joined.
func (s *taskSearchService) GenerateSearchToken(ctx context.Context, userID uuid.UUID, role string) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	var filterRules string

	switch role {
	case entity.RoleTeacher:
		filterRules = fmt.Sprintf("teacher_id = %q", userID.String())
	default:
		classrooms, err := s.classrooms.ListByStudent(ctx, userID)
		if err != nil {
			return "", err
		}

		ids := make([]string, 0, len(classrooms))
		for _, c := range classrooms {
			ids = append(ids, fmt.Sprintf("%q", c.ID.String()))
		}
		if len(ids) == 0 {
			// No memberships yet: scope to a filter that matches nothing.
			ids = append(ids, fmt.Sprintf("%q", uuid.Nil.String()))
		}

		filterRules = fmt.Sprintf("classroom_id IN [%s] AND status = %q",
			strings.Join(ids, ", "), entity.TaskStatusActive)
	}

	searchRules := map[string]any{
		"tasks": map[string]any{
			"filter": filterRules,
		},
	}

	token, err := s.client.GenerateTenantToken(s.signingKeyUID, searchRules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func strPtr(s string) *string {
	return &s
}
