package dto

import (
	"github.com/alflem/onboarding-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64 `json:"id"`
	CategoryID  uint64 `json:"category_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
	Order       int    `json:"order"`
	IsBuddyTask bool   `json:"is_buddy_task"`
}

// CategoryDTO represents a category with its ordered tasks
type CategoryDTO struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	Order           int       `json:"order"`
	IsBuddyCategory bool      `json:"is_buddy_category"`
	Tasks           []TaskDTO `json:"tasks"`
}

// TemplateDTO represents a checklist template with nested categories
type TemplateDTO struct {
	ID               uint64        `json:"id"`
	OrganizationID   uint64        `json:"organization_id"`
	OrganizationName string        `json:"organization_name,omitempty"`
	Categories       []CategoryDTO `json:"categories"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		CategoryID:  task.CategoryID,
		Title:       task.Title,
		Description: task.Description,
		Link:        task.Link,
		Order:       task.Order,
		IsBuddyTask: task.IsBuddyTask,
	}
}

// ToCategoryDTO converts a Category model with tasks to CategoryDTO
func ToCategoryDTO(category models.Category) CategoryDTO {
	tasks := make([]TaskDTO, len(category.Tasks))
	for i, task := range category.Tasks {
		tasks[i] = ToTaskDTO(task)
	}
	return CategoryDTO{
		ID:              category.ID,
		Name:            category.Name,
		Order:           category.Order,
		IsBuddyCategory: category.IsBuddyCategory,
		Tasks:           tasks,
	}
}

// ToTemplateDTO converts a Checklist with nested categories to TemplateDTO
func ToTemplateDTO(checklist models.Checklist) TemplateDTO {
	categories := make([]CategoryDTO, len(checklist.Categories))
	for i, category := range checklist.Categories {
		categories[i] = ToCategoryDTO(category)
	}
	return TemplateDTO{
		ID:               checklist.ID,
		OrganizationID:   checklist.OrganizationID,
		OrganizationName: checklist.Organization.Name,
		Categories:       categories,
	}
}
