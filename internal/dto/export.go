package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/alflem/onboarding-api/internal/constants"
	"github.com/alflem/onboarding-api/internal/models"
)

// Export types recorded in the snapshot metadata and consulted on import.
const (
	ExportTypeAll     = "all"
	ExportTypeRegular = "regular"
	ExportTypeBuddy   = "buddy"
)

// ExportTask is one task row of a checklist snapshot
type ExportTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
	Order       int    `json:"order"`
	IsBuddyTask bool   `json:"is_buddy_task"`
}

// ExportCategory is one category of a checklist snapshot
type ExportCategory struct {
	Name            string       `json:"name"`
	Order           int          `json:"order"`
	IsBuddyCategory bool         `json:"is_buddy_category"`
	Tasks           []ExportTask `json:"tasks"`
}

// ExportDocument is the downloadable checklist snapshot with its metadata
// envelope. Version is recorded but not validated on import.
type ExportDocument struct {
	ExportID         string           `json:"export_id"`
	Version          string           `json:"version"`
	ExportedAt       time.Time        `json:"exported_at"`
	ExportedBy       string           `json:"exported_by"`
	ExportType       string           `json:"export_type"`
	OrganizationName string           `json:"organization_name"`
	Categories       []ExportCategory `json:"categories"`
}

// ValidExportType reports whether t is one of the recorded export types.
func ValidExportType(t string) bool {
	return t == ExportTypeAll || t == ExportTypeRegular || t == ExportTypeBuddy
}

// ToExportDocument serializes a checklist, filtered to the requested
// export type. A full export keeps empty categories; categories emptied
// by a partial filter are omitted.
func ToExportDocument(checklist models.Checklist, exportType, exportedBy string) ExportDocument {
	doc := ExportDocument{
		ExportID:         uuid.NewString(),
		Version:          constants.ExportVersion,
		ExportedAt:       time.Now().UTC(),
		ExportedBy:       exportedBy,
		ExportType:       exportType,
		OrganizationName: checklist.Organization.Name,
	}

	for _, category := range checklist.Categories {
		tasks := make([]ExportTask, 0, len(category.Tasks))
		for _, task := range category.Tasks {
			if exportType == ExportTypeRegular && task.IsBuddyTask {
				continue
			}
			if exportType == ExportTypeBuddy && !task.IsBuddyTask {
				continue
			}
			tasks = append(tasks, ExportTask{
				Title:       task.Title,
				Description: task.Description,
				Link:        task.Link,
				Order:       task.Order,
				IsBuddyTask: task.IsBuddyTask,
			})
		}
		if len(tasks) == 0 && exportType != ExportTypeAll {
			continue
		}
		doc.Categories = append(doc.Categories, ExportCategory{
			Name:            category.Name,
			Order:           category.Order,
			IsBuddyCategory: category.IsBuddyCategory,
			Tasks:           tasks,
		})
	}

	return doc
}
