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

	"github.com/alflem/onboarding-api/internal/database"
	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/repository"
)

// OrganizationHandlerTestSuite covers the super-admin organization
// surface.
type OrganizationHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *OrganizationHandlerTestSuite) SetupTest() {
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
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	orgRepo := repository.NewOrganizationRepository(suite.db)
	handler := NewOrganizationHandler(orgRepo)

	gin.SetMode(gin.TestMode)

	suite.router = gin.New()
	suite.router.GET("/api/organizations", handler.ListOrganizations)
	suite.router.POST("/api/organizations", handler.CreateOrganization)
	suite.router.GET("/api/organizations/:id", handler.GetOrganization)
	suite.router.PATCH("/api/organizations/:id", handler.UpdateOrganization)
	suite.router.DELETE("/api/organizations/:id", handler.DeleteOrganization)
}

// TearDownTest runs after each test
func (suite *OrganizationHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *OrganizationHandlerTestSuite) request(method, url string, payload interface{}) *httptest.ResponseRecorder {
	var raw []byte
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		suite.Require().NoError(err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *OrganizationHandlerTestSuite) TestCreateOrganization_SeedsTemplate() {
	w := suite.request(http.MethodPost, "/api/organizations", gin.H{"name": "Acme"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var org models.Organization
	suite.Require().NoError(suite.db.Where("name = ?", "Acme").First(&org).Error)
	suite.True(org.BuddyEnabled)

	var checklist models.Checklist
	suite.Require().NoError(suite.db.Where("organization_id = ?", org.ID).First(&checklist).Error)
	var categoryCount int64
	suite.Require().NoError(suite.db.Model(&models.Category{}).Where("checklist_id = ?", checklist.ID).Count(&categoryCount).Error)
	suite.Equal(int64(6), categoryCount)
}

func (suite *OrganizationHandlerTestSuite) TestCreateOrganization_BuddyDisabledPersists() {
	w := suite.request(http.MethodPost, "/api/organizations", gin.H{
		"name":          "Acme",
		"buddy_enabled": false,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	// Read back fresh so a column default cannot hide the stored value
	var org models.Organization
	suite.Require().NoError(suite.db.Where("name = ?", "Acme").First(&org).Error)
	suite.False(org.BuddyEnabled)
}

func (suite *OrganizationHandlerTestSuite) TestCreateOrganization_DuplicateName() {
	w := suite.request(http.MethodPost, "/api/organizations", gin.H{"name": "Acme"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.request(http.MethodPost, "/api/organizations", gin.H{"name": "Acme"})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *OrganizationHandlerTestSuite) TestUpdateOrganization_TogglesBuddy() {
	w := suite.request(http.MethodPost, "/api/organizations", gin.H{"name": "Acme"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var org models.Organization
	suite.Require().NoError(suite.db.Where("name = ?", "Acme").First(&org).Error)

	w = suite.request(http.MethodPatch, fmt.Sprintf("/api/organizations/%d", org.ID), gin.H{
		"buddy_enabled": false,
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var updated models.Organization
	suite.Require().NoError(suite.db.First(&updated, org.ID).Error)
	suite.False(updated.BuddyEnabled)
	suite.Equal("Acme", updated.Name)
}

func (suite *OrganizationHandlerTestSuite) TestGetOrganization_NotFound() {
	w := suite.request(http.MethodGet, "/api/organizations/999", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestOrganizationHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(OrganizationHandlerTestSuite))
}
