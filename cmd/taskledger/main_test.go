package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

// CLITestSuite drives run() end to end against a file store in a temp dir
type CLITestSuite struct {
	suite.Suite
	configPath string
	dataDir    string
}

func (suite *CLITestSuite) SetupTest() {
	dir := suite.T().TempDir()
	suite.dataDir = filepath.Join(dir, "data")
	suite.configPath = filepath.Join(dir, "taskledger.yaml")

	cfg := fmt.Sprintf(`env: test
log_level: error
storage:
  driver: file
  data_dir: %s
audit:
  path: %s
`, suite.dataDir, filepath.Join(suite.dataDir, "log.log"))
	suite.Require().NoError(os.WriteFile(suite.configPath, []byte(cfg), 0o644))
}

func (suite *CLITestSuite) exec(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", suite.configPath}, args...)
	code := run(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (suite *CLITestSuite) mustExec(args ...string) string {
	code, out, errOut := suite.exec(args...)
	suite.Require().Equal(ExitSuccess, code, "stderr: %s", errOut)
	return out
}

func (suite *CLITestSuite) register(name string) {
	suite.mustExec("register", "--user", name, "--email", name+"@example.com", "--password", "secret")
}

func (suite *CLITestSuite) as(user string, cmd string, args ...string) []string {
	return append([]string{cmd, "--user", user, "--password", "secret"}, args...)
}

func (suite *CLITestSuite) TestLaunchScenario() {
	suite.register("alice")
	suite.register("bob")

	var project struct {
		ID string `json:"id"`
	}
	out := suite.mustExec(append([]string{"--format", "json"}, suite.as("alice", "create-project", "--title", "Launch")...)...)
	suite.Require().NoError(json.Unmarshal([]byte(out), &project))

	suite.mustExec(suite.as("alice", "add-member", "--project", project.ID, "--username", "bob")...)

	var task struct {
		ID string `json:"id"`
	}
	out = suite.mustExec(append([]string{"--format", "json"}, suite.as("alice", "create-task", "--project", project.ID, "--title", "Draft spec")...)...)
	suite.Require().NoError(json.Unmarshal([]byte(out), &task))

	suite.mustExec(suite.as("alice", "assign", "--project", project.ID, "--task", task.ID, "--username", "bob")...)
	suite.mustExec(suite.as("bob", "set-status", "--project", project.ID, "--task", task.ID, "--status", "doing")...)

	var detail struct {
		Status    string   `json:"status"`
		Assignees []string `json:"assignees"`
		History   []struct {
			Username string `json:"username"`
			Change   string `json:"change"`
		} `json:"history"`
	}
	out = suite.mustExec(append([]string{"--format", "json"}, suite.as("bob", "task", "--project", project.ID, "--task", task.ID)...)...)
	suite.Require().NoError(json.Unmarshal([]byte(out), &detail))
	suite.Equal("DOING", detail.Status)
	suite.Equal([]string{"bob"}, detail.Assignees)
	suite.Require().Len(detail.History, 2)
	suite.Equal("bob", detail.History[1].Username)

	out = suite.mustExec(suite.as("bob", "board", "--project", project.ID)...)
	suite.Contains(out, "BACKLOG")
	suite.Contains(out, "Draft spec")

	suite.FileExists(filepath.Join(suite.dataDir, "projects.json"))
	suite.FileExists(filepath.Join(suite.dataDir, "log.log"))
}

func (suite *CLITestSuite) TestExitCodes() {
	suite.register("alice")

	code, _, errOut := suite.exec("register", "--user", "alice", "--email", "x@example.com", "--password", "secret")
	suite.Equal(ExitSuccess, code)
	suite.Contains(errOut, "notice:")

	code, _, _ = suite.exec("frobnicate")
	suite.Equal(ExitInvalidInvocation, code)

	code, _, _ = suite.exec("projects")
	suite.Equal(ExitInvalidInvocation, code)

	code, _, errOut = suite.exec("projects", "--user", "alice", "--password", "wrong")
	suite.Equal(ExitFailure, code)
	suite.Contains(errOut, "UNAUTHORIZED")

	code, _, _ = suite.exec(suite.as("alice", "project", "--project", "not-a-uuid")...)
	suite.Equal(ExitInvalidInvocation, code)

	code, _, errOut = suite.exec(suite.as("alice", "tasks", "--project", "6f1c1a52-8d3c-4c61-9a55-2b8f0a6c1d11", "--status", "later")...)
	suite.Equal(ExitFailure, code)
	suite.Contains(errOut, "VALIDATION_ERROR")

	code, _, errOut = suite.exec(suite.as("alice", "project", "--project", "6f1c1a52-8d3c-4c61-9a55-2b8f0a6c1d11")...)
	suite.Equal(ExitFailure, code)
	suite.Contains(errOut, "NOT_FOUND")

	code, _, _ = suite.exec("--format", "xml", "projects")
	suite.Equal(ExitInvalidInvocation, code)

	code, out, _ := suite.exec("help")
	suite.Equal(ExitSuccess, code)
	suite.Contains(out, "create-project")
}

func (suite *CLITestSuite) TestAdminCommands() {
	suite.register("bob")
	suite.mustExec("create-admin", "--username", "root", "--new-password", "rootpw")

	suite.mustExec("deactivate-user", "--user", "root", "--password", "rootpw", "--username", "bob")
	code, _, errOut := suite.exec(suite.as("bob", "projects")...)
	suite.Equal(ExitFailure, code)
	suite.Contains(errOut, "ACCOUNT_INACTIVE")

	suite.mustExec("activate-user", "--user", "root", "--password", "rootpw", "--username", "bob")
	suite.mustExec(suite.as("bob", "projects")...)

	code, _, _ = suite.exec("purge-data", "--user", "root", "--password", "rootpw")
	suite.Equal(ExitInvalidInvocation, code)

	suite.mustExec("purge-data", "--user", "root", "--password", "rootpw", "--yes")
	code, _, _ = suite.exec(suite.as("bob", "projects")...)
	suite.Equal(ExitFailure, code)

	log, err := os.ReadFile(filepath.Join(suite.dataDir, "log.log"))
	suite.Require().NoError(err)
	suite.Contains(string(log), "All data purged by admin root")
	suite.NotContains(string(log), "User registered with username: bob")
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}
