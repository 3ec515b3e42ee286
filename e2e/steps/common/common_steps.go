package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GetResponseField(field string) (any, error)
	ResponseContains(field string) bool
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Advance(d time.Duration)
}

// RegisterSteps registers common step definitions used across features
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	// Background steps
	ctx.Step(`^the consent service is running$`, steps.serviceIsRunning)
	ctx.Step(`^(\d+) hours? pass(?:es)?$`, steps.hoursPass)

	// Response assertion steps
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should contain "([^"]*)"$`, steps.responseFieldShouldContain)
	ctx.Step(`^the response field "([^"]*)" should be (true|false)$`, steps.responseFieldShouldBeBool)
	ctx.Step(`^the response field "([^"]*)" should be (\d+)$`, steps.responseFieldShouldBeNumber)
	ctx.Step(`^the response list "([^"]*)" should have (\d+) items?$`, steps.responseListShouldHave)
	ctx.Step(`^the error code should be "([^"]*)"$`, steps.errorCodeShouldBe)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsRunning(ctx context.Context) error {
	return nil
}

func (s *commonSteps) hoursPass(ctx context.Context, hours int) error {
	s.tc.Advance(time.Duration(hours) * time.Hour)
	return nil
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	actualStatus := s.tc.GetLastResponseStatus()
	if actualStatus != expectedStatus {
		return fmt.Errorf("expected status %d but got %d. Response body: %s",
			expectedStatus, actualStatus, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) responseShouldContain(ctx context.Context, text string) error {
	if !s.tc.ResponseContains(text) {
		return fmt.Errorf("response does not contain %q. Response: %s", text, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(ctx context.Context, field, expected string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(value) != expected {
		return fmt.Errorf("expected %s to equal %q but got %v", field, expected, value)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldContain(ctx context.Context, field, substring string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %s is not a string: %v", field, value)
	}
	if !strings.Contains(str, substring) {
		return fmt.Errorf("expected %s to contain %q but got %q", field, substring, str)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBeBool(ctx context.Context, field, expected string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	want, _ := strconv.ParseBool(expected) //nolint:errcheck // regexp only admits true|false
	if got, ok := value.(bool); !ok || got != want {
		return fmt.Errorf("expected %s to be %s but got %v", field, expected, value)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldBeNumber(ctx context.Context, field string, expected int) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got, ok := value.(float64); !ok || int(got) != expected {
		return fmt.Errorf("expected %s to be %d but got %v", field, expected, value)
	}
	return nil
}

func (s *commonSteps) responseListShouldHave(ctx context.Context, field string, count int) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	items, ok := value.([]any)
	if !ok {
		return fmt.Errorf("field %s is not a list: %v", field, value)
	}
	if len(items) != count {
		return fmt.Errorf("expected %d items in %s but got %d", count, field, len(items))
	}
	return nil
}

func (s *commonSteps) errorCodeShouldBe(ctx context.Context, code string) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &body); err != nil {
		return fmt.Errorf("response is not an error document: %w", err)
	}
	if body.Error != code {
		return fmt.Errorf("expected error %q but got %q", code, body.Error)
	}
	return nil
}
