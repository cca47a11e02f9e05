package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/campuscord/rolesync/pkg/server/middleware"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	serverURL    string
	authToken    string
	response     *http.Response
	responseBody []byte
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^a rolesync server is running$`, s.aServerIsRunning)
	sc.Step(`^I am authenticated as "([^"]*)"$`, s.iAmAuthenticatedAs)

	// Identity steps
	sc.Step(`^I link member "([^"]*)" with attributes:$`, s.iLinkMemberWithAttributes)
	sc.Step(`^I unlink member "([^"]*)"$`, s.iUnlinkMember)
	sc.Step(`^member "([^"]*)" should have a verified identity$`, s.memberShouldHaveIdentity)
	sc.Step(`^member "([^"]*)" should not have a verified identity$`, s.memberShouldNotHaveIdentity)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, s.theResponseShouldContain)

	// Guild, platform and sync steps
	s.registerSyncSteps(sc)
}

// Background steps

func (s *StepsContext) aServerIsRunning() error {
	if err := s.tc.ResetState(); err != nil {
		return err
	}
	instance, err := s.tc.Server()
	if err != nil {
		return err
	}
	s.serverURL = instance.ServerURL
	return s.iAmAuthenticatedAs("integration")
}

func (s *StepsContext) iAmAuthenticatedAs(subject string) error {
	auth := middleware.NewBearerAuthenticator(testTokenSecret)
	token, err := auth.IssueToken(subject, time.Hour)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	s.authToken = token
	return nil
}

// Identity steps

func (s *StepsContext) iLinkMemberWithAttributes(memberID string, doc *godog.DocString) error {
	return s.request(http.MethodPut, "/identities/"+memberID, strings.NewReader(doc.Content))
}

func (s *StepsContext) iUnlinkMember(memberID string) error {
	return s.request(http.MethodDelete, "/identities/"+memberID, nil)
}

func (s *StepsContext) memberShouldHaveIdentity(memberID string) error {
	if err := s.request(http.MethodGet, "/identities/"+memberID, nil); err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(http.StatusOK)
}

func (s *StepsContext) memberShouldNotHaveIdentity(memberID string) error {
	if err := s.request(http.MethodGet, "/identities/"+memberID, nil); err != nil {
		return err
	}
	return s.theResponseStatusShouldBe(http.StatusNotFound)
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no response recorded")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d (body: %s)", status, s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseShouldContain(substr string) error {
	if !strings.Contains(string(s.responseBody), substr) {
		return fmt.Errorf("response %q does not contain %q", s.responseBody, substr)
	}
	return nil
}

// request performs an authenticated API call and records the response.
func (s *StepsContext) request(method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, s.serverURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.authToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	s.response, err = s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	s.responseBody, err = io.ReadAll(s.response.Body)
	_ = s.response.Body.Close()
	return err
}

// responseJSON decodes the recorded response body.
func (s *StepsContext) responseJSON(out any) error {
	if len(s.responseBody) == 0 {
		return fmt.Errorf("response body is empty")
	}
	return json.Unmarshal(s.responseBody, out)
}
