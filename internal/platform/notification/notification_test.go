package notification

import (
	"context"
	"strings"
	"testing"
)

func TestTemplateEngine_RenderVerification(t *testing.T) {
	e := NewTemplateEngine()

	subject, body, err := e.Render("account-verification", map[string]string{
		"first_name":  "Jane",
		"verify_link": "https://app.example.com/auth/verify/abc123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if subject != "Verify your email address" {
		t.Errorf("unexpected subject: %q", subject)
	}
	if !strings.Contains(body, "Dear Jane") {
		t.Errorf("first_name not substituted: %q", body)
	}
	if !strings.Contains(body, "https://app.example.com/auth/verify/abc123") {
		t.Errorf("verify_link not substituted: %q", body)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestTemplateEngine_MissingKeysLeftAsIs(t *testing.T) {
	e := NewTemplateEngine()
	_, body, err := e.Render("account-verification", map[string]string{"first_name": "Jane"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "{{verify_link}}") {
		t.Errorf("expected missing key to remain: %q", body)
	}
}

func TestTemplateEngine_RegisterOverrides(t *testing.T) {
	e := NewTemplateEngine()
	e.RegisterTemplate(Template{
		ID:      "account-verification",
		Subject: "Custom subject",
		Body:    "Custom body {{x}}",
	})

	subject, body, err := e.Render("account-verification", map[string]string{"x": "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "Custom subject" || body != "Custom body y" {
		t.Errorf("override not applied: %q / %q", subject, body)
	}
}

func TestMailer_SendTemplate(t *testing.T) {
	sender := &MockEmailSender{}
	m := NewMailer(sender, NewTemplateEngine())

	err := m.SendTemplate(context.Background(), "account-verification", map[string]string{
		"first_name":  "Jane",
		"verify_link": "https://app.example.com/auth/verify/tok",
	}, "jane@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := sender.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 email, got %d", len(calls))
	}
	if calls[0].To != "jane@example.com" {
		t.Errorf("unexpected recipient: %q", calls[0].To)
	}
}

func TestMailer_SenderFailurePropagates(t *testing.T) {
	sender := &MockEmailSender{ShouldFail: true, FailError: "connection refused"}
	m := NewMailer(sender, NewTemplateEngine())

	err := m.SendTemplate(context.Background(), "account-verification", nil, "jane@example.com")
	if err == nil {
		t.Fatal("expected error from failing sender")
	}
}
