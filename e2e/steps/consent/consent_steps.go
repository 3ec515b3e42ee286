package consent

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// Patients known to the e2e directory.
const (
	knownPatient   = "patient-0001@carebridge"
	unknownPatient = "patient-9999@carebridge"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	PATCH(path string, body any) error
	DELETE(path string) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Save(name, value string)
	Saved(name string) (string, error)
	Now() time.Time
}

// RegisterSteps registers consent-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &consentSteps{tc: tc}

	// Request lifecycle
	ctx.Step(`^a consent request "([^"]*)" expiring in (\d+) hours$`, steps.createRequest)
	ctx.Step(`^I create a consent request for an unknown patient$`, steps.createRequestForUnknownPatient)
	ctx.Step(`^I create a consent request that expired an hour ago$`, steps.createExpiredRequest)
	ctx.Step(`^I fetch consent request "([^"]*)"$`, steps.fetchRequest)
	ctx.Step(`^I change the purpose of "([^"]*)" to "([^"]*)"$`, steps.updatePurpose)
	ctx.Step(`^I delete consent request "([^"]*)"$`, steps.deleteRequest)
	ctx.Step(`^the patient denies "([^"]*)"$`, steps.denyRequest)
	ctx.Step(`^consent request "([^"]*)" should be "([^"]*)"$`, steps.requestShouldHaveStatus)
	ctx.Step(`^the patient has (\d+) "([^"]*)" requests?$`, steps.patientRequestCount)

	// Grants and artefacts
	ctx.Step(`^the patient grants "([^"]*)" for "([^"]*)" with (\d+) accesses$`, steps.grantWithQuota)
	ctx.Step(`^the patient grants "([^"]*)" for "([^"]*)" without a quota$`, steps.grantUnlimited)
	ctx.Step(`^the patient grants "([^"]*)" with the range reversed$`, steps.grantReversed)
	ctx.Step(`^the patient revokes the artefact for "([^"]*)"$`, steps.revoke)
	ctx.Step(`^the artefact signature for "([^"]*)" should be valid$`, steps.signatureShouldBeValid)

	// Access
	ctx.Step(`^the requester checks access to "([^"]*)" for "([^"]*)"$`, steps.checkAccess)
	ctx.Step(`^the requester accesses "([^"]*)" for "([^"]*)"$`, steps.recordAccess)
	ctx.Step(`^the requester accesses "([^"]*)" for "([^"]*)" (\d+) times$`, steps.recordAccessTimes)
	ctx.Step(`^the requester validates access to "([^"]*)" for "([^"]*)"$`, steps.validateAccess)
	ctx.Step(`^I ask for the remaining accesses on "([^"]*)"$`, steps.remaining)
	ctx.Step(`^I list the accesses on "([^"]*)"$`, steps.listAccesses)
}

type consentSteps struct {
	tc TestContext
}

func requestKey(name string) string  { return "request:" + name }
func artefactKey(name string) string { return "artefact:" + name }

func (s *consentSteps) newRequestBody(patient string, expiry time.Time) map[string]any {
	return map[string]any{
		"patientId":   patient,
		"requesterId": "dr-meera",
		"purpose":     "Care management",
		"hipId":       "hip-city-hospital",
		"hiuId":       "hiu-family-clinic",
		"expiryDate":  expiry.Format(time.RFC3339),
	}
}

func (s *consentSteps) createRequest(ctx context.Context, name string, hours int) error {
	body := s.newRequestBody(knownPatient, s.tc.Now().Add(time.Duration(hours)*time.Hour))
	if err := s.tc.POST("/consent/requests", body); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return fmt.Errorf("create request: status %d: %s", s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
	return s.saveID(requestKey(name))
}

func (s *consentSteps) createRequestForUnknownPatient(ctx context.Context) error {
	return s.tc.POST("/consent/requests", s.newRequestBody(unknownPatient, s.tc.Now().Add(24*time.Hour)))
}

func (s *consentSteps) createExpiredRequest(ctx context.Context) error {
	return s.tc.POST("/consent/requests", s.newRequestBody(knownPatient, s.tc.Now().Add(-time.Hour)))
}

func (s *consentSteps) fetchRequest(ctx context.Context, name string) error {
	reqID, err := s.tc.Saved(requestKey(name))
	if err != nil {
		return err
	}
	return s.tc.GET("/consent/requests/"+reqID, nil)
}

func (s *consentSteps) updatePurpose(ctx context.Context, name, purpose string) error {
	reqID, err := s.tc.Saved(requestKey(name))
	if err != nil {
		return err
	}
	return s.tc.PATCH("/consent/requests/"+reqID, map[string]any{"purpose": purpose})
}

func (s *consentSteps) deleteRequest(ctx context.Context, name string) error {
	reqID, err := s.tc.Saved(requestKey(name))
	if err != nil {
		return err
	}
	return s.tc.DELETE("/consent/requests/" + reqID)
}

func (s *consentSteps) denyRequest(ctx context.Context, name string) error {
	reqID, err := s.tc.Saved(requestKey(name))
	if err != nil {
		return err
	}
	return s.tc.POST("/consent/requests/"+reqID+"/deny", nil)
}

func (s *consentSteps) requestShouldHaveStatus(ctx context.Context, name, status string) error {
	if err := s.fetchRequest(ctx, name); err != nil {
		return err
	}
	got, err := s.tc.GetResponseField("status")
	if err != nil {
		return err
	}
	if got != status {
		return fmt.Errorf("expected request %s to be %s but it is %v", name, status, got)
	}
	return nil
}

func (s *consentSteps) patientRequestCount(ctx context.Context, count int, status string) error {
	path := fmt.Sprintf("/consent/patients/%s/requests?status=%s", url.PathEscape(knownPatient), url.QueryEscape(status))
	if err := s.tc.GET(path, nil); err != nil {
		return err
	}
	requests, err := s.tc.GetResponseField("requests")
	if err != nil {
		return err
	}
	list, ok := requests.([]any)
	if !ok || len(list) != count {
		return fmt.Errorf("expected %d %s requests but got %v", count, status, requests)
	}
	return nil
}

func (s *consentSteps) grantBody(categories string, from, to time.Time) map[string]any {
	var cats []map[string]any
	for _, c := range strings.Split(categories, ",") {
		cats = append(cats, map[string]any{"category": strings.TrimSpace(c)})
	}
	return map[string]any{
		"accessMode":     "VIEW",
		"dateRange":      map[string]any{"from": from.Format(time.RFC3339), "to": to.Format(time.RFC3339)},
		"dataCategories": cats,
	}
}

func (s *consentSteps) grant(name string, body map[string]any) error {
	reqID, err := s.tc.Saved(requestKey(name))
	if err != nil {
		return err
	}
	if err := s.tc.POST("/consent/requests/"+reqID+"/grant", body); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == 201 {
		return s.saveID(artefactKey(name))
	}
	return nil
}

func (s *consentSteps) grantWithQuota(ctx context.Context, name, categories string, repeats int) error {
	now := s.tc.Now()
	body := s.grantBody(categories, now, now.Add(24*time.Hour))
	body["frequency"] = map[string]any{"unit": "DAY", "value": 1, "repeats": repeats}
	return s.grant(name, body)
}

func (s *consentSteps) grantUnlimited(ctx context.Context, name, categories string) error {
	now := s.tc.Now()
	return s.grant(name, s.grantBody(categories, now, now.Add(24*time.Hour)))
}

func (s *consentSteps) grantReversed(ctx context.Context, name string) error {
	now := s.tc.Now()
	return s.grant(name, s.grantBody("LAB_REPORTS", now.Add(24*time.Hour), now))
}

func (s *consentSteps) revoke(ctx context.Context, name string) error {
	artID, err := s.tc.Saved(artefactKey(name))
	if err != nil {
		return err
	}
	return s.tc.POST("/consent/artefacts/"+artID+"/revoke", nil)
}

func (s *consentSteps) signatureShouldBeValid(ctx context.Context, name string) error {
	artID, err := s.tc.Saved(artefactKey(name))
	if err != nil {
		return err
	}
	if err := s.tc.GET("/consent/artefacts/"+artID+"/signature", nil); err != nil {
		return err
	}
	valid, err := s.tc.GetResponseField("valid")
	if err != nil {
		return err
	}
	if valid != true {
		return fmt.Errorf("expected a valid signature, got %s", s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *consentSteps) accessCall(name, action, categories string) error {
	artID, err := s.tc.Saved(artefactKey(name))
	if err != nil {
		return err
	}
	var cats []string
	for _, c := range strings.Split(categories, ",") {
		cats = append(cats, strings.TrimSpace(c))
	}
	return s.tc.POST("/consent/artefacts/"+artID+"/"+action, map[string]any{"categories": cats})
}

func (s *consentSteps) checkAccess(ctx context.Context, name, categories string) error {
	return s.accessCall(name, "check", categories)
}

func (s *consentSteps) recordAccess(ctx context.Context, name, categories string) error {
	return s.accessCall(name, "access", categories)
}

func (s *consentSteps) recordAccessTimes(ctx context.Context, name, categories string, times int) error {
	for i := 0; i < times; i++ {
		if err := s.accessCall(name, "access", categories); err != nil {
			return err
		}
		if s.tc.GetLastResponseStatus() != 201 {
			return fmt.Errorf("access %d: status %d: %s", i+1, s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
		}
	}
	return nil
}

func (s *consentSteps) validateAccess(ctx context.Context, name, categories string) error {
	return s.accessCall(name, "validate", categories)
}

func (s *consentSteps) remaining(ctx context.Context, name string) error {
	artID, err := s.tc.Saved(artefactKey(name))
	if err != nil {
		return err
	}
	return s.tc.GET("/consent/artefacts/"+artID+"/remaining", nil)
}

func (s *consentSteps) listAccesses(ctx context.Context, name string) error {
	artID, err := s.tc.Saved(artefactKey(name))
	if err != nil {
		return err
	}
	return s.tc.GET("/consent/artefacts/"+artID+"/accesses", nil)
}

func (s *consentSteps) saveID(key string) error {
	v, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return fmt.Errorf("response has no id: %s", s.tc.GetLastResponseBody())
	}
	s.tc.Save(key, id)
	return nil
}
