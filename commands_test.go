package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course_miniapp/handlers"
	"course_miniapp/logging"
	"course_miniapp/mockapi"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type printedView struct {
	Page  string          `json:"page"`
	State json.RawMessage `json:"state"`
	Data  json.RawMessage `json:"data"`
}

func execute(t *testing.T, args ...string) (printedView, error) {
	t.Helper()
	loginDev, loginInitData, coursesProj = false, "", 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	var view printedView
	if out.Len() > 0 {
		require.NoError(t, json.Unmarshal(out.Bytes(), &view), out.String())
	}
	return view, err
}

func setMockEnv(t *testing.T) {
	t.Setenv("USE_MOCKS", "true")
	t.Setenv("STORAGE_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "panic")
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"10", "101"})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 101}, ids)

	_, err = parseIDs([]string{"10", "abc"})
	assert.EqualError(t, err, `invalid id "abc": must be a number`)
}

func TestProjectsCommand(t *testing.T) {
	setMockEnv(t)

	view, err := execute(t, "projects")
	require.NoError(t, err)
	assert.Equal(t, "projects", view.Page)
	assert.Contains(t, string(view.State), `"status": "Projects updated"`)
}

func TestSessionPersistsAcrossCommands(t *testing.T) {
	setMockEnv(t)

	view, err := execute(t, "login", "--dev")
	require.NoError(t, err)
	var info handlers.SessionInfo
	require.NoError(t, json.Unmarshal(view.Data, &info))
	assert.True(t, info.Authenticated)

	view, err = execute(t, "whoami")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(view.Data, &info))
	assert.True(t, info.Authenticated)
	assert.Equal(t, "mock-dev-t...", info.Token)
	assert.Contains(t, string(view.State), `"username": "dev_user"`)

	_, err = execute(t, "logout")
	require.NoError(t, err)
	view, err = execute(t, "whoami")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(view.Data, &info))
	assert.False(t, info.Authenticated)
}

func TestPayCommand(t *testing.T) {
	setMockEnv(t)

	view, err := execute(t, "pay", "10", "101")
	require.NoError(t, err)
	assert.JSONEq(t, `{"payment_url":"https://pay.example.com/course/101"}`, string(view.Data))
}

func TestCommandFailsOnStateError(t *testing.T) {
	srv, err := mockapi.New(mockapi.Config{JWTSecret: []byte("secret"), Logger: logging.Discard()})
	require.NoError(t, err)
	server := httptest.NewServer(srv.Handler())
	t.Cleanup(server.Close)

	t.Setenv("USE_MOCKS", "false")
	t.Setenv("API_BASE_URL", server.URL+mockapi.BasePath)
	t.Setenv("STORAGE_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "panic")

	_, err = execute(t, "my")
	require.Error(t, err)
	assert.Equal(t, "authorization header is required", err.Error())

	_, err = execute(t, "login", "--dev")
	require.NoError(t, err)

	view, err := execute(t, "course", "10", "999")
	require.Error(t, err)
	assert.Equal(t, "not found", err.Error())
	assert.True(t, strings.Contains(string(view.State), `"error": "not found"`))

	_, err = execute(t, "lesson", "10", "101", "x")
	assert.Error(t, err)
}
