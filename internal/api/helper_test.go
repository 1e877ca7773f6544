package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/zaidzaid0342-dotcom/bookhub/internal/api"
	"github.com/zaidzaid0342-dotcom/bookhub/internal/domain"
	"github.com/zaidzaid0342-dotcom/bookhub/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

// newTestServer wires a full router against an isolated sqlite database
// and a miniredis instance.
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB, *redis.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Book{}, &domain.Offer{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := gin.New()
	api.RegisterRoutes(r, db, rdb, testSecret, t.TempDir())
	return r, db, rdb
}

// createUser inserts a user directly and returns it with a valid token
func createUser(t *testing.T, db *gorm.DB, handle string, isAdmin bool) (domain.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{
		Handle:      handle,
		Username:    handle + "-name",
		Email:       handle + "@example.com",
		Phone:       "5551234",
		Password:    string(hash),
		City:        "Springfield",
		State:       "IL",
		ClassName:   "Junior",
		CollegeName: "State College",
		IsAdmin:     isAdmin,
	}
	require.NoError(t, db.Create(&user).Error)
	token, err := utils.GenerateJWT(user.ID, testSecret)
	require.NoError(t, err)
	return user, token
}

// createBook inserts a listing directly owned by the given seller
func createBook(t *testing.T, db *gorm.DB, sellerID uint, name string, price float64, status string) domain.Book {
	t.Helper()
	book := domain.Book{
		BookName:      name,
		Category:      "Mathematics",
		CollegeName:   "State College",
		PickupAddress: "Dorm 5",
		Price:         price,
		Image:         "uploads/test.jpg",
		SellerID:      sellerID,
		Status:        status,
	}
	require.NoError(t, db.Create(&book).Error)
	return book
}

// doJSON performs a request with an optional JSON body and bearer token
func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doMultipart performs a multipart listing-creation request
func doMultipart(t *testing.T, r *gin.Engine, fields map[string]string, imageName string, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageName != "" {
		fw, err := mw.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/books", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded JSON body into dest
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}
