package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alflem/onboarding-api/internal/constants"
	"github.com/alflem/onboarding-api/internal/database"
	"github.com/alflem/onboarding-api/internal/middleware"
	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/repository"
	"github.com/alflem/onboarding-api/internal/services"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	auth   middleware.AuthContext
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Organization{},
		&models.Checklist{},
		&models.Category{},
		&models.Task{},
		&models.TaskProgress{},
		&models.BuddyPreparation{},
		&models.BuddyPreparationTaskProgress{},
		&models.User{},
		&models.PreAssignedRole{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	checklistRepo := repository.NewChecklistRepository(suite.db)
	checklistService := services.NewChecklistService(checklistRepo)
	handler := NewTaskHandler(checklistService, checklistRepo)

	gin.SetMode(gin.TestMode)

	suite.router = gin.New()
	// Stand-in for RequireAuth: tests pick the caller via suite.auth
	suite.router.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyAuth, suite.auth)
		c.Next()
	})
	suite.router.POST("/api/tasks", handler.CreateTask)
	suite.router.PATCH("/api/tasks/reorder", handler.ReorderTasks)
	suite.router.GET("/api/tasks/:id", middleware.RequireTaskAccess(), handler.GetTask)
	suite.router.PATCH("/api/tasks/:id", middleware.RequireTaskAccess(), handler.UpdateTask)
	suite.router.DELETE("/api/tasks/:id", middleware.RequireTaskAccess(), handler.DeleteTask)
	suite.router.PATCH("/api/tasks/:id/move", middleware.RequireTaskAccess(), handler.MoveTask)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) createOrganization(name string) (*models.Organization, *models.Checklist) {
	org := &models.Organization{Name: name, BuddyEnabled: true}
	suite.Require().NoError(suite.db.Create(org).Error)
	checklist := &models.Checklist{OrganizationID: org.ID}
	suite.Require().NoError(suite.db.Create(checklist).Error)
	return org, checklist
}

func (suite *TaskHandlerTestSuite) createCategory(checklistID uint64, name string, order int) *models.Category {
	category := &models.Category{ChecklistID: checklistID, Name: name, Order: order}
	suite.Require().NoError(suite.db.Create(category).Error)
	return category
}

func (suite *TaskHandlerTestSuite) createTask(categoryID uint64, title string, order int) *models.Task {
	task := &models.Task{CategoryID: categoryID, Title: title, Order: order}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *TaskHandlerTestSuite) actAsAdmin(org *models.Organization) {
	suite.auth = middleware.AuthContext{UserID: 1, Role: models.RoleAdmin, OrganizationID: org.ID}
}

func (suite *TaskHandlerTestSuite) request(method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		suite.Require().NoError(err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TaskHandlerTestSuite) tasksInOrder(categoryID uint64) []models.Task {
	var tasks []models.Task
	suite.Require().NoError(suite.db.
		Where("category_id = ?", categoryID).
		Order("sort_order ASC").
		Find(&tasks).Error)
	return tasks
}

func (suite *TaskHandlerTestSuite) TestCreateTask_AppendsAtEnd() {
	org, checklist := suite.createOrganization("Acme")
	category := suite.createCategory(checklist.ID, "First day", 0)
	suite.createTask(category.ID, "Badge", 0)
	suite.createTask(category.ID, "Laptop", 1)
	suite.actAsAdmin(org)

	w := suite.request(http.MethodPost, "/api/tasks", gin.H{
		"category_id": category.ID,
		"title":       "Intro meeting",
	})
	suite.Equal(http.StatusCreated, w.Code)

	tasks := suite.tasksInOrder(category.ID)
	suite.Require().Len(tasks, 3)
	suite.Equal("Intro meeting", tasks[2].Title)
	suite.Equal(2, tasks[2].Order)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_ForeignCategory() {
	org, _ := suite.createOrganization("Acme")
	_, otherChecklist := suite.createOrganization("Globex")
	otherCategory := suite.createCategory(otherChecklist.ID, "First day", 0)
	suite.actAsAdmin(org)

	w := suite.request(http.MethodPost, "/api/tasks", gin.H{
		"category_id": otherCategory.ID,
		"title":       "Sneaky",
	})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestReorderTasks_PersistsExactOrders() {
	org, checklist := suite.createOrganization("Acme")
	category := suite.createCategory(checklist.ID, "First day", 0)
	a := suite.createTask(category.ID, "A", 0)
	b := suite.createTask(category.ID, "B", 1)
	c := suite.createTask(category.ID, "C", 2)
	suite.actAsAdmin(org)

	payload := gin.H{"items": []gin.H{
		{"id": a.ID, "order": 2},
		{"id": b.ID, "order": 0},
		{"id": c.ID, "order": 1},
	}}

	w := suite.request(http.MethodPatch, "/api/tasks/reorder", payload)
	suite.Equal(http.StatusOK, w.Code)

	tasks := suite.tasksInOrder(category.ID)
	suite.Equal([]string{"B", "C", "A"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})

	// Reordering with the same payload is idempotent
	w = suite.request(http.MethodPatch, "/api/tasks/reorder", payload)
	suite.Equal(http.StatusOK, w.Code)

	tasks = suite.tasksInOrder(category.ID)
	suite.Equal([]string{"B", "C", "A"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})
}

func (suite *TaskHandlerTestSuite) TestReorderTasks_LeavesUnlistedRowsAlone() {
	org, checklist := suite.createOrganization("Acme")
	category := suite.createCategory(checklist.ID, "First day", 0)
	a := suite.createTask(category.ID, "A", 0)
	suite.createTask(category.ID, "B", 1)
	suite.actAsAdmin(org)

	w := suite.request(http.MethodPatch, "/api/tasks/reorder", gin.H{
		"items": []gin.H{{"id": a.ID, "order": 5}},
	})
	suite.Equal(http.StatusOK, w.Code)

	var b models.Task
	suite.Require().NoError(suite.db.Where("title = ?", "B").First(&b).Error)
	suite.Equal(1, b.Order)

	var moved models.Task
	suite.Require().NoError(suite.db.First(&moved, a.ID).Error)
	suite.Equal(5, moved.Order)
}

func (suite *TaskHandlerTestSuite) TestReorderTasks_CrossOrganizationRejected() {
	org, _ := suite.createOrganization("Acme")
	_, otherChecklist := suite.createOrganization("Globex")
	otherCategory := suite.createCategory(otherChecklist.ID, "First day", 0)
	foreign := suite.createTask(otherCategory.ID, "Foreign", 0)
	suite.actAsAdmin(org)

	w := suite.request(http.MethodPatch, "/api/tasks/reorder", gin.H{
		"items": []gin.H{{"id": foreign.ID, "order": 3}},
	})
	suite.Equal(http.StatusForbidden, w.Code)

	// Nothing was written
	var task models.Task
	suite.Require().NoError(suite.db.First(&task, foreign.ID).Error)
	suite.Equal(0, task.Order)
}

func (suite *TaskHandlerTestSuite) TestMoveTask_CompactsBothCategories() {
	org, checklist := suite.createOrganization("Acme")
	source := suite.createCategory(checklist.ID, "First day", 0)
	dest := suite.createCategory(checklist.ID, "First week", 1)
	suite.createTask(source.ID, "A0", 0)
	moved := suite.createTask(source.ID, "A1", 1)
	suite.createTask(source.ID, "A2", 2)
	suite.createTask(dest.ID, "B0", 0)
	suite.createTask(dest.ID, "B1", 1)
	suite.actAsAdmin(org)

	w := suite.request(http.MethodPatch, fmt.Sprintf("/api/tasks/%d/move", moved.ID), gin.H{
		"category_id": dest.ID,
		"order":       1,
	})
	suite.Equal(http.StatusOK, w.Code)

	sourceTasks := suite.tasksInOrder(source.ID)
	suite.Require().Len(sourceTasks, 2)
	suite.Equal([]string{"A0", "A2"}, []string{sourceTasks[0].Title, sourceTasks[1].Title})
	suite.Equal([]int{0, 1}, []int{sourceTasks[0].Order, sourceTasks[1].Order})

	destTasks := suite.tasksInOrder(dest.ID)
	suite.Require().Len(destTasks, 3)
	suite.Equal([]string{"B0", "A1", "B1"}, []string{destTasks[0].Title, destTasks[1].Title, destTasks[2].Title})
	suite.Equal([]int{0, 1, 2}, []int{destTasks[0].Order, destTasks[1].Order, destTasks[2].Order})
}

func (suite *TaskHandlerTestSuite) TestMoveTask_ClampsPositionPastEnd() {
	org, checklist := suite.createOrganization("Acme")
	source := suite.createCategory(checklist.ID, "First day", 0)
	dest := suite.createCategory(checklist.ID, "First week", 1)
	moved := suite.createTask(source.ID, "A0", 0)
	suite.createTask(dest.ID, "B0", 0)
	suite.actAsAdmin(org)

	w := suite.request(http.MethodPatch, fmt.Sprintf("/api/tasks/%d/move", moved.ID), gin.H{
		"category_id": dest.ID,
		"order":       99,
	})
	suite.Equal(http.StatusOK, w.Code)

	destTasks := suite.tasksInOrder(dest.ID)
	suite.Require().Len(destTasks, 2)
	suite.Equal("A0", destTasks[1].Title)
	suite.Equal(1, destTasks[1].Order)
}

func (suite *TaskHandlerTestSuite) TestMoveTask_ForeignDestination() {
	org, checklist := suite.createOrganization("Acme")
	source := suite.createCategory(checklist.ID, "First day", 0)
	moved := suite.createTask(source.ID, "A0", 0)
	_, otherChecklist := suite.createOrganization("Globex")
	otherCategory := suite.createCategory(otherChecklist.ID, "Theirs", 0)
	suite.actAsAdmin(org)

	w := suite.request(http.MethodPatch, fmt.Sprintf("/api/tasks/%d/move", moved.ID), gin.H{
		"category_id": otherCategory.ID,
		"order":       0,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_CascadesAndCompacts() {
	org, checklist := suite.createOrganization("Acme")
	category := suite.createCategory(checklist.ID, "First day", 0)
	suite.createTask(category.ID, "A", 0)
	deleted := suite.createTask(category.ID, "B", 1)
	suite.createTask(category.ID, "C", 2)
	suite.Require().NoError(suite.db.Create(&models.TaskProgress{UserID: 42, TaskID: deleted.ID}).Error)
	suite.actAsAdmin(org)

	w := suite.request(http.MethodDelete, fmt.Sprintf("/api/tasks/%d", deleted.ID), nil)
	suite.Equal(http.StatusOK, w.Code)

	tasks := suite.tasksInOrder(category.ID)
	suite.Require().Len(tasks, 2)
	suite.Equal([]int{0, 1}, []int{tasks[0].Order, tasks[1].Order})

	var progressCount int64
	suite.Require().NoError(suite.db.Model(&models.TaskProgress{}).
		Where("task_id = ?", deleted.ID).Count(&progressCount).Error)
	suite.Equal(int64(0), progressCount)
}

func (suite *TaskHandlerTestSuite) TestGetTask_OtherOrganization() {
	org, _ := suite.createOrganization("Acme")
	_, otherChecklist := suite.createOrganization("Globex")
	otherCategory := suite.createCategory(otherChecklist.ID, "Theirs", 0)
	foreign := suite.createTask(otherCategory.ID, "Foreign", 0)
	suite.actAsAdmin(org)

	w := suite.request(http.MethodGet, fmt.Sprintf("/api/tasks/%d", foreign.ID), nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_Fields() {
	org, checklist := suite.createOrganization("Acme")
	category := suite.createCategory(checklist.ID, "First day", 0)
	task := suite.createTask(category.ID, "Old title", 0)
	suite.actAsAdmin(org)

	w := suite.request(http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), gin.H{
		"title":         "New title",
		"is_buddy_task": true,
	})
	suite.Equal(http.StatusOK, w.Code)

	var updated models.Task
	suite.Require().NoError(suite.db.First(&updated, task.ID).Error)
	suite.Equal("New title", updated.Title)
	suite.True(updated.IsBuddyTask)
	suite.Equal(0, updated.Order)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
