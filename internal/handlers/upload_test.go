package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/designdesk/task-desk-api/internal/constants"
	"github.com/designdesk/task-desk-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type UploadHandlerTestSuite struct {
	suite.Suite
	base    string
	task    models.Task
	handler *UploadHandler
}

func (suite *UploadHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.base = suite.T().TempDir()
	suite.task = models.Task{ID: "7d9f6c1e-3b1a-4c55-9a57-0d5e3f1f2a10"}
	suite.handler = NewUploadHandler(suite.base)

	dir := filepath.Join(suite.base, "tasks", suite.task.ID)
	suite.Require().NoError(os.MkdirAll(dir, 0o755))
	suite.Require().NoError(os.WriteFile(filepath.Join(dir, "1704880800000_logo.png"), []byte("png-bytes"), 0o644))
	suite.Require().NoError(os.WriteFile(filepath.Join(suite.base, "secret.txt"), []byte("secret"), 0o644))
}

func (suite *UploadHandlerTestSuite) fileContext(name string, withTask bool) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/uploads/tasks/"+suite.task.ID+"/"+name, nil)
	c.Params = gin.Params{{Key: "id", Value: suite.task.ID}, {Key: "file", Value: name}}
	if withTask {
		c.Set(constants.ContextKeyTask, suite.task)
	}
	return c, w
}

func (suite *UploadHandlerTestSuite) TestServeTaskFile_Success() {
	c, w := suite.fileContext("1704880800000_logo.png", true)
	suite.handler.ServeTaskFile(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "png-bytes", w.Body.String())
}

func (suite *UploadHandlerTestSuite) TestServeTaskFile_Missing() {
	c, w := suite.fileContext("nope.png", true)
	suite.handler.ServeTaskFile(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *UploadHandlerTestSuite) TestServeTaskFile_RejectsTraversal() {
	for _, name := range []string{"..", ".", "../../secret.txt", "../other/file.png"} {
		c, w := suite.fileContext(name, true)
		suite.handler.ServeTaskFile(c)

		assert.Equal(suite.T(), http.StatusNotFound, w.Code, name)
		assert.NotContains(suite.T(), w.Body.String(), "secret", name)
	}
}

func (suite *UploadHandlerTestSuite) TestServeTaskFile_TaskNotLoaded() {
	c, w := suite.fileContext("1704880800000_logo.png", false)
	suite.handler.ServeTaskFile(c)

	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)
}

func TestUploadHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(UploadHandlerTestSuite))
}
