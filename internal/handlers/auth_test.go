package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alflem/onboarding-api/internal/constants"
	"github.com/alflem/onboarding-api/internal/database"
	"github.com/alflem/onboarding-api/internal/dto"
	"github.com/alflem/onboarding-api/internal/models"
	"github.com/alflem/onboarding-api/internal/repository"
	"github.com/alflem/onboarding-api/internal/services"
)

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
	router      *gin.Engine
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
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
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	authService := services.NewAuthService(userRepo, orgRepo)
	handler := NewAuthHandler(authService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/signup", handler.Signup)
	r.POST("/api/auth/login", handler.Login)
	r.POST("/api/auth/logout", handler.Logout)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
		router:      r,
	}
}

func postJSON(t *testing.T, router *gin.Engine, url string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Signup_ProvisionsOrganization(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := postJSON(t, env.router, "/api/auth/signup", map[string]string{
		"name":              "Alice",
		"email":             "alice@acme.test",
		"password":          "supersecret",
		"organization_name": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "alice@acme.test", response.Email)

	// The founder of a fresh organization becomes its admin
	var user models.User
	require.NoError(t, env.db.Where("email = ?", "alice@acme.test").First(&user).Error)
	require.Equal(t, models.RoleAdmin, user.Role)

	// Organization, checklist and the default template were provisioned
	var org models.Organization
	require.NoError(t, env.db.Where("name = ?", "Acme").First(&org).Error)
	var checklist models.Checklist
	require.NoError(t, env.db.Where("organization_id = ?", org.ID).First(&checklist).Error)
	var categoryCount int64
	require.NoError(t, env.db.Model(&models.Category{}).Where("checklist_id = ?", checklist.ID).Count(&categoryCount).Error)
	require.Equal(t, int64(6), categoryCount)

	// One progress row per seeded task
	var taskCount, progressCount int64
	require.NoError(t, env.db.Model(&models.Task{}).Count(&taskCount).Error)
	require.NoError(t, env.db.Model(&models.TaskProgress{}).Where("user_id = ?", user.ID).Count(&progressCount).Error)
	require.NotZero(t, taskCount)
	require.Equal(t, taskCount, progressCount)
}

func TestAuthHandler_Signup_JoinsExistingOrganization(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := postJSON(t, env.router, "/api/auth/signup", map[string]string{
		"name":              "Alice",
		"email":             "alice@acme.test",
		"password":          "supersecret",
		"organization_name": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, env.router, "/api/auth/signup", map[string]string{
		"name":              "Bob",
		"email":             "bob@acme.test",
		"password":          "supersecret",
		"organization_name": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "bob@acme.test").First(&user).Error)
	require.Equal(t, models.RoleEmployee, user.Role)

	var orgCount int64
	require.NoError(t, env.db.Model(&models.Organization{}).Count(&orgCount).Error)
	require.Equal(t, int64(1), orgCount)
}

func TestAuthHandler_Signup_PreAssignedRoleWins(t *testing.T) {
	env := setupAuthTestEnv(t)

	require.NoError(t, env.db.Create(&models.PreAssignedRole{
		Email: "super@acme.test",
		Role:  models.RoleSuperAdmin,
	}).Error)

	w := postJSON(t, env.router, "/api/auth/signup", map[string]string{
		"name":              "Root",
		"email":             "super@acme.test",
		"password":          "supersecret",
		"organization_name": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, env.db.Where("email = ?", "super@acme.test").First(&user).Error)
	require.Equal(t, models.RoleSuperAdmin, user.Role)
}

func TestAuthHandler_Signup_LinksBuddyPreparation(t *testing.T) {
	env := setupAuthTestEnv(t)

	// Admin founds the organization and a buddy joins
	w := postJSON(t, env.router, "/api/auth/signup", map[string]string{
		"name":              "Alice",
		"email":             "alice@acme.test",
		"password":          "supersecret",
		"organization_name": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var org models.Organization
	require.NoError(t, env.db.Where("name = ?", "Acme").First(&org).Error)
	var buddy models.User
	require.NoError(t, env.db.Where("email = ?", "alice@acme.test").First(&buddy).Error)

	prep := models.BuddyPreparation{
		FirstName:      "Carol",
		LastName:       "Next",
		Email:          "carol@acme.test",
		BuddyID:        buddy.ID,
		OrganizationID: org.ID,
		IsActive:       true,
	}
	require.NoError(t, env.db.Create(&prep).Error)

	// Carol signs up with the prepared email
	w = postJSON(t, env.router, "/api/auth/signup", map[string]string{
		"name":              "Carol",
		"email":             "carol@acme.test",
		"password":          "supersecret",
		"organization_name": "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var carol models.User
	require.NoError(t, env.db.Where("email = ?", "carol@acme.test").First(&carol).Error)
	require.NotNil(t, carol.BuddyID)
	require.Equal(t, buddy.ID, *carol.BuddyID)

	var linked models.BuddyPreparation
	require.NoError(t, env.db.First(&linked, prep.ID).Error)
	require.NotNil(t, linked.LinkedUserID)
	require.Equal(t, carol.ID, *linked.LinkedUserID)
	require.True(t, linked.IsActive)
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := map[string]string{
		"name":              "Alice",
		"email":             "alice@acme.test",
		"password":          "supersecret",
		"organization_name": "Acme",
	}
	w := postJSON(t, env.router, "/api/auth/signup", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, env.router, "/api/auth/signup", payload)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Signup_BlankFields(t *testing.T) {
	env := setupAuthTestEnv(t)

	// Whitespace-only values pass the required binding but not the service
	w := postJSON(t, env.router, "/api/auth/signup", map[string]string{
		"name":              "   ",
		"email":             "alice@acme.test",
		"password":          "supersecret",
		"organization_name": "Acme",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, env.router, "/api/auth/signup", map[string]string{
		"name":              "Alice",
		"email":             "alice@acme.test",
		"password":          "supersecret",
		"organization_name": "  ",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Signup_ShortPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := postJSON(t, env.router, "/api/auth/signup", map[string]string{
		"name":              "Alice",
		"email":             "alice@acme.test",
		"password":          "short",
		"organization_name": "Acme",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Name:             "Alice",
		Email:            "alice@acme.test",
		Password:         "supersecret",
		OrganizationName: "Acme",
	})
	require.NoError(t, err)

	w := postJSON(t, env.router, "/api/auth/login", map[string]string{
		"email":    "alice@acme.test",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Result().Cookies())

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "alice@acme.test", response.Email)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Signup(services.SignupInput{
		Name:             "Alice",
		Email:            "alice@acme.test",
		Password:         "supersecret",
		OrganizationName: "Acme",
	})
	require.NoError(t, err)

	w := postJSON(t, env.router, "/api/auth/login", map[string]string{
		"email":    "alice@acme.test",
		"password": "wrongwrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
