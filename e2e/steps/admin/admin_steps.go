package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POSTWithHeaders(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	GetLastResponseBody() []byte
	GetAdminToken() string
	Saved(name string) (string, error)
}

// RegisterSteps registers admin-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc}

	ctx.Step(`^an operator runs the expiry sweep$`, steps.runSweep)
	ctx.Step(`^an operator runs the expiry sweep with token "([^"]*)"$`, steps.runSweepWithToken)
	ctx.Step(`^an operator runs the expiry sweep without a token$`, steps.runSweepWithoutToken)
	ctx.Step(`^the audit trail for (request|artefact) "([^"]*)" should list "([^"]*)"$`, steps.auditTrailShouldList)
}

type adminSteps struct {
	tc TestContext
}

const sweepPath = "/admin/consent/sweep"

func (s *adminSteps) runSweep(ctx context.Context) error {
	return s.runSweepWithToken(ctx, s.tc.GetAdminToken())
}

func (s *adminSteps) runSweepWithToken(ctx context.Context, token string) error {
	return s.tc.POSTWithHeaders(sweepPath, nil, map[string]string{
		"X-Admin-Token":    token,
		"X-Admin-Actor-ID": "ops-e2e",
	})
}

func (s *adminSteps) runSweepWithoutToken(ctx context.Context) error {
	return s.tc.POSTWithHeaders(sweepPath, nil, nil)
}

func (s *adminSteps) auditTrailShouldList(ctx context.Context, kind, name, action string) error {
	subject, err := s.tc.Saved(kind + ":" + name)
	if err != nil {
		return err
	}
	if err := s.tc.GET("/admin/consent/audit/"+subject, map[string]string{"X-Admin-Token": s.tc.GetAdminToken()}); err != nil {
		return err
	}
	var trail struct {
		Events []struct {
			Action string `json:"action"`
		} `json:"events"`
	}
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &trail); err != nil {
		return fmt.Errorf("decode audit trail: %w", err)
	}
	for _, e := range trail.Events {
		if e.Action == action {
			return nil
		}
	}
	return fmt.Errorf("audit trail for %s %s has no %q event: %s", kind, name, action, s.tc.GetLastResponseBody())
}
